// Package capture turns pasteboard changes into stored history items or
// explicit skip/failure decisions.
package capture

import (
	"context"
	"time"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/privacy"
	"github.com/hpungsan/pastedock/internal/toast"
)

// Toast messages.
const (
	MsgSkippedExcludedApp = "Skipped excluded app"
	MsgSkippedSensitive   = "Skipped sensitive content"
	MsgSkippedDuplicate   = "Skipped duplicate"
	MsgCaptureFailed      = "Capture failed"
	MsgHistoryTrimmed     = "History trimmed"
	MsgHistoryTrimFailed  = "History trim failed"
)

var skipMessages = map[SkipReason]string{
	SkipExcludedApp:      MsgSkippedExcludedApp,
	SkipSensitiveContent: MsgSkippedSensitive,
	SkipDuplicate:        MsgSkippedDuplicate,
}

// Pipeline is the single entry point for captures. It holds no per-capture state.
type Pipeline struct {
	store  history.Store
	policy privacy.Policy
	log    logging.Logger
	toasts toast.Sink
	now    func() time.Time
	newID  func(time.Time) string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger records one entry per terminal outcome.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithToasts enqueues user notifications (when enabled in settings).
func WithToasts(s toast.Sink) Option {
	return func(p *Pipeline) { p.toasts = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDs overrides ULID generation.
func WithIDs(newID func(time.Time) string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a Pipeline over store and policy.
func New(store history.Store, policy privacy.Policy, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:  store,
		policy: policy,
		log:    logging.Nop{},
		now:    time.Now,
		newID:  clip.NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one capture to a terminal Decision. It never returns an error:
// every classifier and store failure becomes a failed Decision.
func (p *Pipeline) Process(ctx context.Context, in clip.CaptureInput, s config.Settings) Decision {
	start := p.now()
	source := in.EffectiveSource()
	r := &report{p: p, in: in, source: source, start: start, showToasts: s.ShowOperationToasts}

	if p.policy.IsExcluded(source) {
		return r.skip(SkipExcludedApp)
	}

	c, err := clip.Classify(in)
	if err != nil {
		return r.fail(FailInvalidInput, "")
	}
	r.size = &c.ByteSize

	if in.Kind == clip.KindText && s.PrivacyFilterEnabled && p.policy.ContainsSensitiveContent(*in.Text) {
		return r.skip(SkipSensitiveContent)
	}

	last, ok, err := p.store.LastContentHash(ctx)
	if err != nil {
		return r.fail(FailStoreWriteFailed, err.Error())
	}
	if ok && last == c.Hash {
		return r.skip(SkipDuplicate)
	}

	created := p.now()
	it := &clip.Item{
		ID:             p.newID(created),
		CreatedAt:      created,
		Kind:           in.Kind,
		PreviewText:    c.Preview,
		ContentHash:    c.Hash,
		ByteSize:       c.ByteSize,
		SourceBundleID: source,
		PayloadPath:    in.PayloadPath,
	}
	if err := p.store.Save(ctx, it); err != nil {
		return r.fail(FailStoreWriteFailed, err.Error())
	}

	// Retention is advisory: its outcome is reported but the save stands.
	outcome, err := p.store.EnforceLimits(ctx, s.MaxItems, s.MaxBytes)
	switch {
	case err != nil:
		r.retentionFailed(err)
	case outcome.Trimmed():
		r.retentionTrimmed(outcome)
	}

	r.entry("capture", string(OutcomeSaved), "", "")
	return Saved(it)
}

// report emits the log entries and toasts for one Process call.
type report struct {
	p          *Pipeline
	in         clip.CaptureInput
	source     *string
	start      time.Time
	size       *int64
	showToasts bool
}

func (r *report) skip(reason SkipReason) Decision {
	r.toast(skipMessages[reason], toast.StyleInfo)
	r.entry("capture", string(OutcomeSkipped), string(reason), "")
	return Skipped(reason)
}

func (r *report) fail(code FailureCode, detail string) Decision {
	r.toast(MsgCaptureFailed, toast.StyleError)
	r.entry("capture", string(OutcomeFailed), string(code), detail)
	logging.L("capture").Debug().Str("code", string(code)).Str("detail", detail).Msg("capture failed")
	return Failed(code, detail)
}

func (r *report) retentionTrimmed(o history.RetentionOutcome) {
	r.toast(MsgHistoryTrimmed, toast.StyleInfo)
	r.entry("retention", "trimmed", "limits_exceeded", "")
	logging.L("capture").Debug().
		Int("deleted_count", o.DeletedCount).
		Int64("deleted_bytes", o.DeletedBytes).
		Msg("history trimmed")
}

func (r *report) retentionFailed(err error) {
	r.toast(MsgHistoryTrimFailed, toast.StyleWarning)
	r.entry("retention", "failed", string(FailRetentionFailed), err.Error())
	logging.L("capture").Warn().Err(err).Msg("retention failed, capture kept")
}

func (r *report) toast(msg string, style toast.Style) {
	if r.showToasts && r.p.toasts != nil {
		r.p.toasts.Enqueue(toast.New(msg, style))
	}
}

func (r *report) entry(event, result, reason, detail string) {
	end := r.p.now()
	dur := end.Sub(r.start).Round(time.Millisecond).Milliseconds()

	e := logging.Entry{
		Event:      event,
		Result:     result,
		Reason:     reason,
		Detail:     detail,
		Kind:       string(r.in.Kind),
		Size:       r.size,
		DurationMs: &dur,
		Timestamp:  end,
	}
	if r.source != nil {
		e.SourceID = *r.source
	}
	r.p.log.Log(e)
}
