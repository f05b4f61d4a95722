package ops

import (
	"context"
	"os"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/payload"
)

// EntryStatus tells whether an item's content can still be put back.
type EntryStatus string

const (
	EntryReady   EntryStatus = "ready"
	EntryMissing EntryStatus = "missing"
)

// ResolveEntryStatus checks the payload blob and, for file items, that the
// manifest lists at least one path and every path still exists.
func ResolveEntryStatus(kind clip.Kind, payloadPath string) EntryStatus {
	if payloadPath == "" || !fileExists(payloadPath) {
		return EntryMissing
	}
	if kind != clip.KindFile {
		return EntryReady
	}
	paths, err := payload.ReadFiles(payloadPath)
	if err != nil || len(paths) == 0 {
		return EntryMissing
	}
	for _, p := range paths {
		if !fileExists(p) {
			return EntryMissing
		}
	}
	return EntryReady
}

// MissingFileCheckInput contains parameters for NeedsMissingFileConfirm.
type MissingFileCheckInput struct {
	ID string
}

// NeedsMissingFileConfirm reports whether id is a file item whose content
// is missing, so restoring it should be confirmed first. Text and image
// items never need confirmation; their restore fails on its own.
func NeedsMissingFileConfirm(ctx context.Context, d *Deps, input MissingFileCheckInput) (bool, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return false, err
	}
	it, err := mustItem(ctx, d.Store, id)
	if err != nil {
		return false, err
	}
	if it.Kind != clip.KindFile {
		return false, nil
	}
	return ResolveEntryStatus(it.Kind, it.PayloadPath) == EntryMissing, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
