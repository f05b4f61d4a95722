package logging

import (
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Event log file name inside the base directory.
const EventLogFile = "events.log"

// Entry is one structured operational record.
type Entry struct {
	Event      string
	Result     string
	Reason     string
	Detail     string
	SourceID   string
	Kind       string
	Size       *int64
	DurationMs *int64
	Timestamp  time.Time
}

// Logger records operational entries. Implementations must not fail the caller.
type Logger interface {
	Log(Entry)
}

// Nop discards every entry.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(Entry) {}

// EventLog writes one JSON line per entry.
type EventLog struct {
	zl     zerolog.Logger
	closer io.Closer
}

// NewEventLog writes entries to w. If w is an io.Closer, Close closes it.
func NewEventLog(w io.Writer) *EventLog {
	el := &EventLog{zl: zerolog.New(w)}
	if c, ok := w.(io.Closer); ok {
		el.closer = c
	}
	return el
}

// OpenEventLog opens <baseDir>/events.log with size rotation.
func OpenEventLog(baseDir string, maxBytes int64, maxFiles int) (*EventLog, error) {
	rw, err := NewRotatingWriter(filepath.Join(baseDir, EventLogFile), maxBytes, maxFiles)
	if err != nil {
		return nil, err
	}
	return NewEventLog(rw), nil
}

// Log implements Logger.
func (l *EventLog) Log(e Entry) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	ev := l.zl.Log().
		Str(KeyEvent, e.Event).
		Str(KeyResult, e.Result)
	if e.Reason != "" {
		ev = ev.Str(KeyReason, e.Reason)
	}
	if e.Detail != "" {
		ev = ev.Str(KeyDetail, e.Detail)
	}
	if e.SourceID != "" {
		ev = ev.Str(KeySourceID, e.SourceID)
	}
	if e.Kind != "" {
		ev = ev.Str(KeyKind, e.Kind)
	}
	if e.Size != nil {
		ev = ev.Int64(KeySize, *e.Size)
	}
	if e.DurationMs != nil {
		ev = ev.Int64(KeyDurationMs, *e.DurationMs)
	}
	ev.Str(KeyTimestamp, ts.UTC().Format(time.RFC3339Nano)).Send()
}

// Close releases the underlying writer.
func (l *EventLog) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
