package ops

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/paste"
	"github.com/hpungsan/pastedock/internal/toast"
)

// TrimOutput contains the result of the Trim operation.
type TrimOutput struct {
	history.RetentionOutcome
	Stats history.Stats `json:"stats"`
}

// Trim enforces the configured retention limits now.
func Trim(ctx context.Context, d *Deps) (*TrimOutput, error) {
	s := d.settings()
	outcome, err := d.Store.EnforceLimits(ctx, s.MaxItems, s.MaxBytes)
	if err != nil {
		return nil, err
	}
	stats, err := d.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &TrimOutput{RetentionOutcome: outcome, Stats: stats}, nil
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	Stats      history.Stats       `json:"stats"`
	TotalSize  string              `json:"total_size"`
	ByteBudget string              `json:"byte_budget"`
	Settings   config.Settings     `json:"settings"`
	Reminder   paste.ReminderState `json:"reminder"`
	Toasts     []toast.Toast       `json:"pending_toasts"`
}

// Status reports history size, effective settings, the paste reminder and
// any toasts not yet shown.
func Status(ctx context.Context, d *Deps) (*StatusOutput, error) {
	stats, err := d.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s := d.settings()

	out := &StatusOutput{
		Stats:      stats,
		TotalSize:  humanize.IBytes(uint64(stats.TotalBytes)),
		ByteBudget: humanize.IBytes(uint64(s.MaxBytes)),
		Settings:   s,
		Toasts:     []toast.Toast{},
	}
	if d.Engine != nil {
		out.Reminder = d.Engine.ReminderState(s)
	}
	if d.Toasts != nil {
		out.Toasts = d.Toasts.Pending()
	}
	return out, nil
}
