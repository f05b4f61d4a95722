package paste

import "sync"

// Reminder reasons recorded by the engine.
const (
	ReminderPermissionNeeded = "permission_needed"
	ReminderPasteFailed      = "paste_failed"
)

// BannerThreshold is the streak length at which the reminder banner shows.
const BannerThreshold = 3

// ReminderState is a snapshot of the failure streak. The zero value is idle.
type ReminderState struct {
	Reason           string `json:"reason,omitempty"`
	ConsecutiveCount int    `json:"consecutive_count"`
	ShouldShowBanner bool   `json:"should_show_banner"`
}

// ReminderTracker counts consecutive same-reason auto-paste failures.
// A different reason restarts the streak at 1; a success resets to idle.
type ReminderTracker struct {
	mu    sync.Mutex
	state ReminderState
}

// NewReminderTracker returns an idle tracker.
func NewReminderTracker() *ReminderTracker {
	return &ReminderTracker{}
}

// RecordFailure extends or restarts the streak.
func (t *ReminderTracker) RecordFailure(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Reason == reason && t.state.ConsecutiveCount > 0 {
		n := t.state.ConsecutiveCount + 1
		t.state = ReminderState{Reason: reason, ConsecutiveCount: n, ShouldShowBanner: n >= BannerThreshold}
		return
	}
	t.state = ReminderState{Reason: reason, ConsecutiveCount: 1}
}

// Reset returns to idle.
func (t *ReminderTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = ReminderState{}
}

// State returns the current snapshot.
func (t *ReminderTracker) State() ReminderState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
