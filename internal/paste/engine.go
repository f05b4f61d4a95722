// Package paste restores history items onto the system pasteboard and,
// when permitted, synthesizes a paste into the target application.
package paste

import (
	"context"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/toast"
)

// Toast messages.
const (
	MsgRestored                = "Restored"
	MsgRestoreFailed           = "Restore failed"
	MsgRestoreFailedMissing    = "Restore failed (file missing)"
	MsgRestoredOnly            = "Restored only"
	MsgRestoredOnlyPermissions = "Restored only (permission needed)"
	MsgPasted                  = "Pasted"
)

// Restorer writes an item's content onto the live pasteboard. File-kind
// restores must fail with an errors.ErrFileMissing error when a file is gone.
type Restorer interface {
	Restore(ctx context.Context, it *clip.Item) error
}

// AutoPaster synthesizes the paste keystroke.
type AutoPaster interface {
	// CanAutoPaste reports whether input injection is currently permitted.
	CanAutoPaste(ctx context.Context) bool

	// PerformAutoPaste pastes, reactivating target first when non-nil.
	PerformAutoPaste(ctx context.Context, target *TargetApp) error
}

// TargetApp identifies the application that should receive the paste.
type TargetApp struct {
	BundleID string `json:"bundle_id"`
	PID      int32  `json:"pid,omitempty"`
}

// ItemLookup resolves item ids. history.Store satisfies it.
type ItemLookup interface {
	Item(ctx context.Context, id string) (*clip.Item, error)
}

// Engine runs restore and restore-and-paste requests. The reminder tracker is
// its only state; settings are supplied per call.
type Engine struct {
	items    ItemLookup
	restorer Restorer
	paster   AutoPaster
	reminder *ReminderTracker
	toasts   toast.Sink
}

// NewEngine creates an Engine. toasts may be nil.
func NewEngine(items ItemLookup, restorer Restorer, paster AutoPaster, toasts toast.Sink) *Engine {
	return &Engine{
		items:    items,
		restorer: restorer,
		paster:   paster,
		reminder: NewReminderTracker(),
		toasts:   toasts,
	}
}

// Restore puts the item on the pasteboard without pasting.
func (e *Engine) Restore(ctx context.Context, id string, s config.Settings) Result {
	if res, ok := e.restore(ctx, id, s); !ok {
		return res
	}
	e.reminder.Reset()
	e.toast(s, MsgRestored, toast.StyleInfo)
	return RestoredOnly(ReasonAutoPasteDisabled, "")
}

// RestoreAndPaste restores the item, then pastes it into target when
// auto-paste is enabled and permitted.
func (e *Engine) RestoreAndPaste(ctx context.Context, id string, target *TargetApp, s config.Settings) Result {
	if res, ok := e.restore(ctx, id, s); !ok {
		return res
	}

	if !s.AutoPasteEnabled {
		e.reminder.Reset()
		e.toast(s, MsgRestoredOnly, toast.StyleInfo)
		return RestoredOnly(ReasonAutoPasteDisabled, "")
	}

	if !e.paster.CanAutoPaste(ctx) {
		if s.PermissionReminderEnabled {
			e.reminder.RecordFailure(ReminderPermissionNeeded)
		}
		e.toast(s, MsgRestoredOnlyPermissions, toast.StyleWarning)
		return RestoredOnly(ReasonPermissionNeeded, "")
	}

	if err := e.paster.PerformAutoPaste(ctx, target); err != nil {
		if s.PermissionReminderEnabled {
			e.reminder.RecordFailure(ReminderPasteFailed)
		}
		logging.L("paste").Warn().Err(err).Msg("auto-paste failed")
		e.toast(s, MsgRestoredOnly, toast.StyleWarning)
		return RestoredOnly(ReasonPasteFailed, err.Error())
	}

	e.reminder.Reset()
	e.toast(s, MsgPasted, toast.StyleSuccess)
	return Pasted()
}

// ReminderState returns the streak, or the idle state when reminders are disabled.
func (e *Engine) ReminderState(s config.Settings) ReminderState {
	if !s.PermissionReminderEnabled {
		return ReminderState{}
	}
	return e.reminder.State()
}

// restore looks up and restores the item. ok is false when res is terminal.
func (e *Engine) restore(ctx context.Context, id string, s config.Settings) (res Result, ok bool) {
	it, err := e.items.Item(ctx, id)
	if err != nil {
		e.toast(s, MsgRestoreFailed, toast.StyleError)
		return Failed(FailRestoreFailed, err.Error()), false
	}
	if it == nil {
		e.toast(s, MsgRestoreFailed, toast.StyleError)
		return Failed(FailItemNotFound, ""), false
	}

	if err := e.restorer.Restore(ctx, it); err != nil {
		logging.L("paste").Warn().Err(err).Str("id", id).Msg("restore failed")
		if errors.Is(err, errors.ErrFileMissing) {
			e.toast(s, MsgRestoreFailedMissing, toast.StyleError)
			return Failed(FailRestoreFailed, FileMissingDetail), false
		}
		e.toast(s, MsgRestoreFailed, toast.StyleError)
		return Failed(FailRestoreFailed, err.Error()), false
	}
	return Result{}, true
}

func (e *Engine) toast(s config.Settings, msg string, style toast.Style) {
	if s.ShowOperationToasts && e.toasts != nil {
		e.toasts.Enqueue(toast.New(msg, style))
	}
}
