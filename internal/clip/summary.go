package clip

import "time"

// Summary is the JSON shape of an item on the CLI, MCP and web surfaces.
type Summary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Kind           Kind      `json:"kind"`
	PreviewText    string    `json:"preview_text"`
	ContentHash    string    `json:"content_hash"`
	ByteSize       int64     `json:"byte_size"`
	IsPinned       bool      `json:"is_pinned"`
	SourceBundleID *string   `json:"source_bundle_id,omitempty"`
	PayloadPath    string    `json:"payload_path"`
}

// ToSummary converts an Item to its output shape.
func (it *Item) ToSummary() Summary {
	return Summary{
		ID:             it.ID,
		CreatedAt:      it.CreatedAt,
		Kind:           it.Kind,
		PreviewText:    it.PreviewText,
		ContentHash:    it.ContentHash,
		ByteSize:       it.ByteSize,
		IsPinned:       it.IsPinned,
		SourceBundleID: it.SourceBundleID,
		PayloadPath:    it.PayloadPath,
	}
}

// SourceOrEmpty returns the source bundle id or "".
func (it *Item) SourceOrEmpty() string {
	if it.SourceBundleID == nil {
		return ""
	}
	return *it.SourceBundleID
}
