package ops

import (
	"context"

	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/paste"
)

// RestoreInput contains parameters for the Restore and Paste operations.
type RestoreInput struct {
	ID string

	// Target overrides the paste target; when nil Deps.Target is asked.
	Target *paste.TargetApp
}

// RestoreOutput contains the result of the Restore and Paste operations.
type RestoreOutput struct {
	ID       string              `json:"id"`
	Result   paste.Result        `json:"result"`
	Summary  string              `json:"summary"`
	Reminder paste.ReminderState `json:"reminder"`
}

// Restore puts an item back on the pasteboard without pasting.
func Restore(ctx context.Context, d *Deps, input RestoreInput) (*RestoreOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}
	s := d.settings()
	res := d.Engine.Restore(ctx, id, s)
	return &RestoreOutput{ID: id, Result: res, Summary: res.String(), Reminder: d.Engine.ReminderState(s)}, nil
}

// Paste restores an item and pastes it into the target application.
func Paste(ctx context.Context, d *Deps, input RestoreInput) (*RestoreOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	target := input.Target
	if target == nil && d.Target != nil {
		t, err := d.Target(ctx)
		if err != nil {
			logging.L("ops").Debug().Err(err).Msg("no paste target, pasting into frontmost app")
		} else {
			target = t
		}
	}

	s := d.settings()
	res := d.Engine.RestoreAndPaste(ctx, id, target, s)
	return &RestoreOutput{ID: id, Result: res, Summary: res.String(), Reminder: d.Engine.ReminderState(s)}, nil
}
