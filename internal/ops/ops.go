// Package ops implements the operations shared by the CLI, MCP and web surfaces.
package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pastedock/internal/capture"
	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/paste"
	"github.com/hpungsan/pastedock/internal/payload"
	"github.com/hpungsan/pastedock/internal/toast"
)

// MaxListLimit bounds list and pick results.
const MaxListLimit = config.MaxMaxItems

// Deps wires the operations to the running application.
type Deps struct {
	Store    history.Store
	Pipeline *capture.Pipeline
	Engine   *paste.Engine
	Payloads *payload.Area
	Toasts   *toast.Queue

	// Settings returns the current normalized settings.
	Settings func() config.Settings

	// Target returns the app that should receive a paste. Optional.
	Target func(ctx context.Context) (*paste.TargetApp, error)
}

func (d *Deps) settings() config.Settings {
	if d.Settings == nil {
		return config.DefaultSettings()
	}
	return d.Settings()
}

// ValidateID trims and requires an item id.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}

// resolveLimit applies the quick-picker default and the hard maximum.
func resolveLimit(limit int, s config.Settings) int {
	if limit <= 0 {
		limit = s.QuickPickerResultLimit
	}
	return min(limit, MaxListLimit)
}

// mustItem loads an item or returns NOT_FOUND.
func mustItem(ctx context.Context, store history.Store, id string) (*clip.Item, error) {
	it, err := store.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errors.NewNotFound(id)
	}
	return it, nil
}

func summaries(items []*clip.Item) []clip.Summary {
	out := make([]clip.Summary, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToSummary())
	}
	return out
}
