// Package toast queues short user-facing notifications for display.
package toast

import "sync"

// Style classifies a toast for presentation.
type Style string

const (
	StyleSuccess Style = "success"
	StyleInfo    Style = "info"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
)

// DefaultDurationMs is how long a toast stays visible.
const DefaultDurationMs = 2500

// Toast is one notification.
type Toast struct {
	Message    string `json:"message"`
	Style      Style  `json:"style"`
	DurationMs int    `json:"duration_ms"`
}

// New builds a toast with the default duration.
func New(message string, style Style) Toast {
	return Toast{Message: message, Style: style, DurationMs: DefaultDurationMs}
}

// Sink accepts toasts. Queue is the production implementation.
type Sink interface {
	Enqueue(Toast)
}

// Queue is a FIFO of pending toasts, safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	pending  []Toast
	capacity int
	notify   chan struct{}
}

// NewQueue creates a queue. capacity <= 0 means unbounded; otherwise the
// oldest toast is dropped when a new one would exceed it.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity, notify: make(chan struct{}, 1)}
}

// Enqueue appends t.
func (q *Queue) Enqueue(t Toast) {
	if t.DurationMs <= 0 {
		t.DurationMs = DefaultDurationMs
	}

	q.mu.Lock()
	q.pending = append(q.pending, t)
	if q.capacity > 0 && len(q.pending) > q.capacity {
		q.pending = q.pending[len(q.pending)-q.capacity:]
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest toast.
func (q *Queue) Dequeue() (Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Toast{}, false
	}
	t := q.pending[0]
	q.pending = q.pending[1:]
	return t, true
}

// Pending returns a copy of the queued toasts, oldest first.
func (q *Queue) Pending() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.pending))
	copy(out, q.pending)
	return out
}

// Drain removes and returns every queued toast.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

// Ready is signalled (coalesced) after each Enqueue.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}
