// Package clip defines clipboard history items and derives their identity,
// retention cost and preview from captured content.
package clip

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the content type of a captured item.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// ParseKind parses a kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindImage:
		return KindImage, nil
	case KindFile:
		return KindFile, nil
	}
	return "", fmt.Errorf("unknown kind %q (want text, image or file)", s)
}

// Item is one captured clipboard entry. Everything except IsPinned is fixed at creation.
type Item struct {
	// ID is a ULID assigned at creation
	ID string

	// CreatedAt is the capture time; newest first for recall, oldest first for eviction
	CreatedAt time.Time

	Kind Kind

	// PreviewText is a one-line summary, at most 120 runes
	PreviewText string

	// ContentHash is the lowercase hex SHA-256 of the canonical content bytes
	ContentHash string

	// ByteSize is the size of the persisted payload and drives the byte budget
	ByteSize int64

	// IsPinned exempts the item from automatic eviction
	IsPinned bool

	// SourceBundleID identifies the originating application (nullable)
	SourceBundleID *string

	// PayloadPath references the content blob in the payload area
	PayloadPath string
}

// CaptureInput is one pasteboard change as delivered by the monitor.
// The payload has already been written to PayloadPath.
type CaptureInput struct {
	Kind              Kind
	Text              *string
	ImageBytes        []byte
	FilePaths         []string
	PayloadPath       string
	SourceBundleID    *string
	FrontmostBundleID *string
}

// EffectiveSource returns the app that was frontmost at capture time if known,
// else the payload's declared source.
func (in CaptureInput) EffectiveSource() *string {
	if in.FrontmostBundleID != nil && *in.FrontmostBundleID != "" {
		return in.FrontmostBundleID
	}
	return in.SourceBundleID
}
