package clip

import (
	"encoding/json"
	"fmt"
)

// FilePayload is the manifest persisted for file-kind items.
type FilePayload struct {
	Paths []string `json:"paths"`
}

// EncodeFilePayload serializes a manifest for the given paths.
func EncodeFilePayload(paths []string) ([]byte, error) {
	return json.Marshal(FilePayload{Paths: paths})
}

// DecodeFilePayload parses a manifest.
func DecodeFilePayload(data []byte) (*FilePayload, error) {
	var p FilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode file payload: %w", err)
	}
	return &p, nil
}
