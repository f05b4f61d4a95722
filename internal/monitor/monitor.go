// Package monitor polls the system pasteboard and feeds changes to the
// capture pipeline.
package monitor

import (
	"context"
	"crypto/sha256"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/pastedock/internal/capture"
	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/logging"
)

// Snapshot is the current pasteboard content in its preferred representation.
// The zero value means there is nothing capturable.
type Snapshot struct {
	Kind           clip.Kind
	Text           string
	Image          []byte
	Files          []string
	SourceBundleID string
}

// Empty reports whether the snapshot carries no content.
func (s Snapshot) Empty() bool {
	switch s.Kind {
	case clip.KindText:
		return s.Text == ""
	case clip.KindImage:
		return len(s.Image) == 0
	case clip.KindFile:
		return len(s.Files) == 0
	}
	return true
}

// Source reads the pasteboard.
type Source interface {
	Read(ctx context.Context) (Snapshot, error)
}

// FrontmostTracker reports the bundle id of the active application.
type FrontmostTracker interface {
	Frontmost(ctx context.Context) (string, error)
}

// Processor runs captures. *capture.Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, in clip.CaptureInput, s config.Settings) capture.Decision
}

// PayloadWriter persists capture blobs. *payload.Area satisfies it.
type PayloadWriter interface {
	Write(in *clip.CaptureInput) error
	Discard(path string)
}

// Monitor turns pasteboard changes into captures.
type Monitor struct {
	source    Source
	payloads  PayloadWriter
	pipeline  Processor
	settings  func() config.Settings
	frontmost FrontmostTracker
	onResult  func(capture.Decision)

	mu   sync.Mutex
	last [32]byte
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithFrontmost attributes captures to the frontmost application.
func WithFrontmost(t FrontmostTracker) Option {
	return func(m *Monitor) { m.frontmost = t }
}

// WithDecisionHook is called after every processed capture.
func WithDecisionHook(fn func(capture.Decision)) Option {
	return func(m *Monitor) { m.onResult = fn }
}

// New creates a Monitor. settings is called on every tick so config reloads
// take effect without a restart.
func New(source Source, payloads PayloadWriter, pipeline Processor, settings func() config.Settings, opts ...Option) *Monitor {
	m := &Monitor{
		source:   source,
		payloads: payloads,
		pipeline: pipeline,
		settings: settings,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls until ctx is done. Content already on the pasteboard at start is
// not captured.
func (m *Monitor) Run(ctx context.Context) error {
	logger := logging.L("monitor")
	m.prime(ctx)

	interval := m.settings().MonitoringInterval()
	logger.Info().Dur("interval", interval).Msg("monitor started")

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("monitor stopped")
			return nil
		case <-timer.C:
			if _, err := m.Poll(ctx); err != nil {
				logger.Debug().Err(err).Msg("poll failed")
			}
			timer.Reset(m.settings().MonitoringInterval())
		}
	}
}

// Poll runs one iteration. It returns nil when the pasteboard is unchanged,
// empty, or could not be read.
func (m *Monitor) Poll(ctx context.Context) (*capture.Decision, error) {
	snap, err := m.source.Read(ctx)
	if err != nil {
		return nil, err
	}
	fp := fingerprint(snap)
	if !m.differs(fp) {
		return nil, nil
	}
	if snap.Empty() {
		m.remember(fp)
		return nil, nil
	}

	in := m.input(ctx, snap)
	if err := m.payloads.Write(&in); err != nil {
		logging.L("monitor").Warn().Err(err).Str("kind", string(in.Kind)).Msg("payload write failed")
		return nil, err
	}
	m.remember(fp)

	d := m.pipeline.Process(ctx, in, m.settings())
	if d.Outcome != capture.OutcomeSaved {
		m.payloads.Discard(in.PayloadPath)
	}
	if m.onResult != nil {
		m.onResult(d)
	}
	return &d, nil
}

func (m *Monitor) prime(ctx context.Context) {
	snap, err := m.source.Read(ctx)
	if err != nil {
		return
	}
	m.remember(fingerprint(snap))
}

// differs reports whether fp differs from the last recorded fingerprint.
func (m *Monitor) differs(fp [32]byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fp != m.last
}

// remember records fp once its content has been handled. A failed payload
// write leaves the previous fingerprint so the next tick retries.
func (m *Monitor) remember(fp [32]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = fp
}

func (m *Monitor) input(ctx context.Context, snap Snapshot) clip.CaptureInput {
	in := clip.CaptureInput{Kind: snap.Kind}
	switch snap.Kind {
	case clip.KindText:
		text := snap.Text
		in.Text = &text
	case clip.KindImage:
		in.ImageBytes = snap.Image
	case clip.KindFile:
		in.FilePaths = snap.Files
	}
	if snap.SourceBundleID != "" {
		src := snap.SourceBundleID
		in.SourceBundleID = &src
	}
	if m.frontmost != nil {
		if id, err := m.frontmost.Frontmost(ctx); err == nil && id != "" {
			in.FrontmostBundleID = &id
		}
	}
	return in
}

func fingerprint(s Snapshot) [32]byte {
	h := sha256.New()
	h.Write([]byte(s.Kind))
	h.Write([]byte{0})
	switch s.Kind {
	case clip.KindText:
		h.Write([]byte(s.Text))
	case clip.KindImage:
		h.Write(s.Image)
	case clip.KindFile:
		h.Write([]byte(strings.Join(s.Files, "\n")))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
