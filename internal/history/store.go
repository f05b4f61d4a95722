// Package history persists clipboard items and enforces retention limits.
package history

import (
	"context"
	"os"

	"github.com/hpungsan/pastedock/internal/clip"
)

// Store is the durable collection of clipboard items.
//
// Reads are newest first (created_at descending, ties by id). Every mutating
// operation is atomic with respect to other operations on the same store.
type Store interface {
	// Save inserts a new item.
	Save(ctx context.Context, it *clip.Item) error

	// Item returns the item with id, or (nil, nil) when absent.
	Item(ctx context.Context, id string) (*clip.Item, error)

	// Search returns up to limit items whose preview contains query
	// case-insensitively. A blank query returns the most recent items.
	Search(ctx context.Context, query string, limit int) ([]*clip.Item, error)

	// Pin sets the pin flag. Missing ids are a no-op.
	Pin(ctx context.Context, id string, pinned bool) error

	// Delete removes the item and, best effort, its payload blob. Missing ids are a no-op.
	Delete(ctx context.Context, id string) error

	// ClearAll removes every item and attempts to remove every blob.
	ClearAll(ctx context.Context) error

	// LastContentHash returns the hash of the most recently created item.
	LastContentHash(ctx context.Context) (string, bool, error)

	// EnforceLimits evicts the oldest unpinned items until the store is within
	// maxItems and maxBytes, or no unpinned item remains.
	EnforceLimits(ctx context.Context, maxItems int, maxBytes int64) (RetentionOutcome, error)

	// Stats summarizes the stored history.
	Stats(ctx context.Context) (Stats, error)
}

// RetentionOutcome reports what one EnforceLimits call evicted.
type RetentionOutcome struct {
	DeletedCount int   `json:"deleted_count"`
	DeletedBytes int64 `json:"deleted_bytes"`
}

// Trimmed reports whether anything was evicted.
func (o RetentionOutcome) Trimmed() bool {
	return o.DeletedCount > 0
}

// Stats is a snapshot of history size.
type Stats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
	Pinned     int   `json:"pinned"`
}

// withinLimits reports whether count and bytes satisfy both budgets.
func withinLimits(count int, bytes int64, maxItems int, maxBytes int64) bool {
	return count <= maxItems && bytes <= maxBytes
}

// removeBlob deletes a payload blob. Failures are ignored.
func removeBlob(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
