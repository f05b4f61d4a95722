package ops

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
)

// PickEntry is one quick-picker row.
type PickEntry struct {
	Index       int         `json:"index"`
	ID          string      `json:"id"`
	Kind        clip.Kind   `json:"kind"`
	DisplayText string      `json:"display_text"`
	Pinned      bool        `json:"pinned"`
	Status      EntryStatus `json:"status"`
	Source      string      `json:"source,omitempty"`
	Age         string      `json:"age"`
}

// PickInput contains parameters for the Pick operation.
type PickInput struct {
	Query string
	Limit int
	Now   time.Time // zero means time.Now
}

// PickOutput contains the result of the Pick operation.
type PickOutput struct {
	Entries []PickEntry `json:"entries"`
}

// Pick lists quick-picker entries, numbered from 1.
func Pick(ctx context.Context, d *Deps, input PickInput) (*PickOutput, error) {
	list, err := List(ctx, d, ListInput{Query: input.Query, Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	entries := make([]PickEntry, 0, len(list.Items))
	for i, s := range list.Items {
		e := PickEntry{
			Index:       i + 1,
			ID:          s.ID,
			Kind:        s.Kind,
			DisplayText: DisplayText(s.Kind, s.PreviewText),
			Pinned:      s.IsPinned,
			Status:      ResolveEntryStatus(s.Kind, s.PayloadPath),
			Age:         humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
		}
		if s.SourceBundleID != nil {
			e.Source = *s.SourceBundleID
		}
		entries = append(entries, e)
	}
	return &PickOutput{Entries: entries}, nil
}

// Select returns the entry with the 1-based index.
func (o *PickOutput) Select(index int) (*PickEntry, error) {
	if index < 1 || index > len(o.Entries) {
		return nil, errors.NewInvalidRequest("no entry at that index")
	}
	return &o.Entries[index-1], nil
}

// DisplayText flattens a text preview onto one line. Image and file
// previews are shown as-is.
func DisplayText(kind clip.Kind, preview string) string {
	if kind != clip.KindText {
		return preview
	}
	r := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return strings.TrimSpace(r.Replace(preview))
}
