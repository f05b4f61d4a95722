package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
)

// MemoryStore is a process-local Store with the same semantics as SQLStore.
type MemoryStore struct {
	mu    sync.RWMutex
	items []*clip.Item
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, it *clip.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if existing.ID == it.ID {
			return errors.NewStoreFailed("save", fmt.Errorf("duplicate id %s", it.ID))
		}
	}
	m.items = append(m.items, copyItem(it))
	return nil
}

// Item implements Store.
func (m *MemoryStore) Item(_ context.Context, id string) (*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return copyItem(m.items[i]), nil
	}
	return nil, nil
}

// Search implements Store.
func (m *MemoryStore) Search(_ context.Context, query string, limit int) ([]*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*clip.Item, 0)
	if limit <= 0 {
		return out, nil
	}

	needle := ""
	if strings.TrimSpace(query) != "" {
		needle = strings.ToLower(query)
	}
	for _, it := range m.newestFirst() {
		if needle != "" && !strings.Contains(strings.ToLower(it.PreviewText), needle) {
			continue
		}
		out = append(out, copyItem(it))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Pin implements Store.
func (m *MemoryStore) Pin(_ context.Context, id string, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		m.items[i].IsPinned = pinned
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	path := m.items[i].PayloadPath
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.mu.Unlock()

	removeBlob(path)
	return nil
}

// ClearAll implements Store.
func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	removed := m.items
	m.items = nil
	m.mu.Unlock()

	for _, it := range removed {
		removeBlob(it.PayloadPath)
	}
	return nil
}

// LastContentHash implements Store.
func (m *MemoryStore) LastContentHash(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := m.newestFirst()
	if len(sorted) == 0 {
		return "", false, nil
	}
	return sorted[0].ContentHash, true, nil
}

// EnforceLimits implements Store.
func (m *MemoryStore) EnforceLimits(_ context.Context, maxItems int, maxBytes int64) (RetentionOutcome, error) {
	m.mu.Lock()

	var (
		outcome RetentionOutcome
		paths   []string
	)
	for {
		var total int64
		for _, it := range m.items {
			total += it.ByteSize
		}
		if withinLimits(len(m.items), total, maxItems, maxBytes) {
			break
		}

		victim := -1
		for i, it := range m.items {
			if it.IsPinned {
				continue
			}
			if victim < 0 || olderThan(it, m.items[victim]) {
				victim = i
			}
		}
		if victim < 0 {
			break
		}

		outcome.DeletedCount++
		outcome.DeletedBytes += m.items[victim].ByteSize
		paths = append(paths, m.items[victim].PayloadPath)
		m.items = append(m.items[:victim], m.items[victim+1:]...)
	}
	m.mu.Unlock()

	for _, p := range paths {
		removeBlob(p)
	}
	return outcome, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	for _, it := range m.items {
		s.Count++
		s.TotalBytes += it.ByteSize
		if it.IsPinned {
			s.Pinned++
		}
	}
	return s, nil
}

func (m *MemoryStore) indexOf(id string) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// newestFirst returns the items ordered by created_at descending, ties by id.
// Caller must hold mu.
func (m *MemoryStore) newestFirst() []*clip.Item {
	sorted := make([]*clip.Item, len(m.items))
	copy(sorted, m.items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return olderThan(sorted[j], sorted[i])
	})
	return sorted
}

func olderThan(a, b *clip.Item) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func copyItem(it *clip.Item) *clip.Item {
	cp := *it
	if it.SourceBundleID != nil {
		src := *it.SourceBundleID
		cp.SourceBundleID = &src
	}
	return &cp
}
