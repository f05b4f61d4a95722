package capture

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/db"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/privacy"
	"github.com/hpungsan/pastedock/internal/toast"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []logging.Entry
}

func (l *recordingLogger) Log(e logging.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *recordingLogger) last() logging.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[len(l.entries)-1]
}

// countingStore counts every call that reaches the store.
type countingStore struct {
	history.Store
	calls int
}

func (s *countingStore) LastContentHash(ctx context.Context) (string, bool, error) {
	s.calls++
	return s.Store.LastContentHash(ctx)
}

func (s *countingStore) Save(ctx context.Context, it *clip.Item) error {
	s.calls++
	return s.Store.Save(ctx, it)
}

// faultyStore fails selected operations.
type faultyStore struct {
	history.Store
	saveErr    error
	hashErr    error
	enforceErr error
}

func (s *faultyStore) Save(ctx context.Context, it *clip.Item) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, it)
}

func (s *faultyStore) LastContentHash(ctx context.Context) (string, bool, error) {
	if s.hashErr != nil {
		return "", false, s.hashErr
	}
	return s.Store.LastContentHash(ctx)
}

func (s *faultyStore) EnforceLimits(ctx context.Context, maxItems int, maxBytes int64) (history.RetentionOutcome, error) {
	if s.enforceErr != nil {
		return history.RetentionOutcome{}, s.enforceErr
	}
	return s.Store.EnforceLimits(ctx, maxItems, maxBytes)
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func strPtr(s string) *string { return &s }

func textInput(s string) clip.CaptureInput {
	return clip.CaptureInput{Kind: clip.KindText, Text: strPtr(s), PayloadPath: "/tmp/p/" + s, SourceBundleID: strPtr("com.apple.TextEdit")}
}

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.MaxItems = 100
	s.MaxBytes = 1 << 20
	return s
}

type fixture struct {
	store  history.Store
	log    *recordingLogger
	toasts *toast.Queue
	p      *Pipeline
}

func newFixture(t *testing.T, store history.Store, excluded ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:  store,
		log:    &recordingLogger{},
		toasts: toast.NewQueue(0),
	}
	f.p = New(store, privacy.NewDefaultPolicy(excluded),
		WithLogger(f.log),
		WithToasts(f.toasts),
		WithClock(steppingClock()),
	)
	return f
}

func TestProcess_DuplicateTextSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	first := f.p.Process(ctx, textInput("hello"), testSettings())
	second := f.p.Process(ctx, textInput("hello"), testSettings())

	require.Equal(t, OutcomeSaved, first.Outcome)
	require.NotNil(t, first.Item)
	assert.Equal(t, Skipped(SkipDuplicate), second)

	stats, _ := f.store.Stats(ctx)
	assert.Equal(t, 1, stats.Count)
}

func TestProcess_OlderValueCanBeRecaptured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	a1 := f.p.Process(ctx, textInput("A"), testSettings())
	b := f.p.Process(ctx, textInput("B"), testSettings())
	a2 := f.p.Process(ctx, textInput("A"), testSettings())

	assert.Equal(t, OutcomeSaved, a1.Outcome)
	assert.Equal(t, OutcomeSaved, b.Outcome)
	assert.Equal(t, OutcomeSaved, a2.Outcome, "only the immediately preceding capture counts as duplicate")
	assert.NotEqual(t, a1.Item.ID, a2.Item.ID)
}

func TestProcess_SavedItemFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	in := textInput("line one\nline two")
	in.FrontmostBundleID = strPtr("com.microsoft.VSCode")

	d := f.p.Process(ctx, in, testSettings())
	require.Equal(t, OutcomeSaved, d.Outcome)

	it := d.Item
	assert.Equal(t, clip.KindText, it.Kind)
	assert.Equal(t, "line one line two", it.PreviewText)
	assert.Equal(t, clip.Hash([]byte("line one\nline two")), it.ContentHash)
	assert.Equal(t, int64(17), it.ByteSize)
	assert.Equal(t, in.PayloadPath, it.PayloadPath)
	require.NotNil(t, it.SourceBundleID)
	assert.Equal(t, "com.microsoft.VSCode", *it.SourceBundleID, "frontmost app wins over declared source")
	assert.Len(t, it.ID, 26)

	stored, err := f.store.Item(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.ContentHash, stored.ContentHash)
}

func TestProcess_ImagePreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	d := f.p.Process(ctx, clip.CaptureInput{Kind: clip.KindImage, ImageBytes: make([]byte, 512), PayloadPath: "/tmp/i.png"}, testSettings())

	require.Equal(t, OutcomeSaved, d.Outcome)
	assert.Equal(t, "[Image] 1 KB", d.Item.PreviewText)
	assert.Equal(t, int64(512), d.Item.ByteSize)
}

func TestProcess_FileOrderIndependentDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for _, p := range []string{a, b} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0600))
	}

	first := f.p.Process(ctx, clip.CaptureInput{Kind: clip.KindFile, FilePaths: []string{a, b}, PayloadPath: "/tmp/f1.json"}, testSettings())
	second := f.p.Process(ctx, clip.CaptureInput{Kind: clip.KindFile, FilePaths: []string{b, a}, PayloadPath: "/tmp/f2.json"}, testSettings())

	assert.Equal(t, OutcomeSaved, first.Outcome)
	assert.Equal(t, Skipped(SkipDuplicate), second)
}

func TestProcess_ExcludedAppNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: history.NewMemoryStore()}
	f := newFixture(t, store, "com.agilebits.onepassword7")

	inputs := []clip.CaptureInput{
		{Kind: clip.KindText, Text: strPtr("secret"), SourceBundleID: strPtr("com.agilebits.onepassword7")},
		{Kind: clip.KindText, SourceBundleID: strPtr("com.agilebits.onepassword7")},
		{Kind: clip.KindImage, FrontmostBundleID: strPtr("com.agilebits.onepassword7")},
	}
	for _, in := range inputs {
		d := f.p.Process(ctx, in, testSettings())
		assert.Equal(t, Skipped(SkipExcludedApp), d)
	}

	assert.Equal(t, 0, store.calls)
	stats, _ := store.Stats(ctx)
	assert.Equal(t, 0, stats.Count)
}

func TestProcess_FrontmostExclusionOverridesSource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore(), "com.apple.keychainaccess")

	in := textInput("x")
	in.FrontmostBundleID = strPtr("com.apple.keychainaccess")

	assert.Equal(t, Skipped(SkipExcludedApp), f.p.Process(ctx, in, testSettings()))
}

func TestProcess_SensitiveContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	s := testSettings()
	d := f.p.Process(ctx, textInput("password: hunter2"), s)
	assert.Equal(t, Skipped(SkipSensitiveContent), d)

	s.PrivacyFilterEnabled = false
	d = f.p.Process(ctx, textInput("password: hunter2"), s)
	assert.Equal(t, OutcomeSaved, d.Outcome, "filter disabled lets sensitive text through")
}

func TestProcess_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	cases := []clip.CaptureInput{
		{Kind: clip.KindText},
		{Kind: clip.KindText, Text: strPtr("")},
		{Kind: clip.KindImage, ImageBytes: []byte{}},
		{Kind: clip.KindFile, FilePaths: []string{" ", ""}},
	}
	for i, in := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			d := f.p.Process(ctx, in, testSettings())
			assert.Equal(t, Failed(FailInvalidInput, ""), d)
		})
	}

	stats, _ := f.store.Stats(ctx)
	assert.Equal(t, 0, stats.Count)
}

func TestProcess_SaveFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &faultyStore{Store: history.NewMemoryStore(), saveErr: stderrors.New("disk full")})

	d := f.p.Process(ctx, textInput("x"), testSettings())

	require.Equal(t, OutcomeFailed, d.Outcome)
	assert.Equal(t, FailStoreWriteFailed, d.Failure.Code)
	assert.Equal(t, "disk full", d.Failure.Detail)
	assert.Equal(t, "failed(store_write_failed(disk full))", d.String())

	toasts := f.toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, MsgCaptureFailed, toasts[0].Message)
	assert.Equal(t, toast.StyleError, toasts[0].Style)
}

func TestProcess_LastHashReadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &faultyStore{Store: history.NewMemoryStore(), hashErr: stderrors.New("locked")})

	d := f.p.Process(ctx, textInput("x"), testSettings())
	assert.Equal(t, Failed(FailStoreWriteFailed, "locked"), d)
}

func TestProcess_RetentionTrimsAndReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	s := testSettings()
	s.MaxItems = 2
	for _, v := range []string{"one", "two", "three"} {
		require.Equal(t, OutcomeSaved, f.p.Process(ctx, textInput(v), s).Outcome)
	}

	stats, _ := f.store.Stats(ctx)
	assert.Equal(t, 2, stats.Count)

	msgs := []string{}
	for _, tt := range f.toasts.Drain() {
		msgs = append(msgs, tt.Message)
	}
	assert.Equal(t, []string{MsgHistoryTrimmed}, msgs, "saves are not toasted; trims are")

	var retention []logging.Entry
	for _, e := range f.log.entries {
		if e.Event == "retention" {
			retention = append(retention, e)
		}
	}
	require.Len(t, retention, 1)
	assert.Equal(t, "trimmed", retention[0].Result)
	assert.Equal(t, "limits_exceeded", retention[0].Reason)
	assert.Equal(t, "saved", f.log.last().Result, "capture entry follows the retention entry")
}

func TestProcess_RetentionFailureKeepsSave(t *testing.T) {
	ctx := context.Background()
	store := &faultyStore{Store: history.NewMemoryStore(), enforceErr: stderrors.New("evict failed")}
	f := newFixture(t, store)

	d := f.p.Process(ctx, textInput("kept"), testSettings())

	require.Equal(t, OutcomeSaved, d.Outcome)
	got, err := store.Item(ctx, d.Item.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	var failed *logging.Entry
	for i, e := range f.log.entries {
		if e.Event == "retention" && e.Result == "failed" {
			failed = &f.log.entries[i]
		}
	}
	require.NotNil(t, failed, "retention failure must be logged")
	assert.Equal(t, string(FailRetentionFailed), failed.Reason)
	assert.Equal(t, "evict failed", failed.Detail)

	toasts := f.toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, MsgHistoryTrimFailed, toasts[0].Message)
	assert.Equal(t, toast.StyleWarning, toasts[0].Style)
}

func TestProcess_ToastsRespectSetting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	s := testSettings()
	s.ShowOperationToasts = false
	f.p.Process(ctx, textInput("x"), s)
	f.p.Process(ctx, textInput("x"), s)

	assert.Empty(t, f.toasts.Pending())
	assert.Len(t, f.log.entries, 2, "logging is independent of the toast setting")
}

func TestProcess_SkipToastMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore(), "com.excluded")

	ex := textInput("a")
	ex.SourceBundleID = strPtr("com.excluded")
	f.p.Process(ctx, ex, testSettings())
	f.p.Process(ctx, textInput("api_key=abc123"), testSettings())
	f.p.Process(ctx, textInput("b"), testSettings())
	f.p.Process(ctx, textInput("b"), testSettings())

	var msgs []string
	for _, tt := range f.toasts.Drain() {
		msgs = append(msgs, tt.Message)
		assert.Equal(t, toast.StyleInfo, tt.Style)
	}
	assert.Equal(t, []string{MsgSkippedExcludedApp, MsgSkippedSensitive, MsgSkippedDuplicate}, msgs)
}

func TestProcess_LogEntryFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, history.NewMemoryStore())

	f.p.Process(ctx, textInput("abc"), testSettings())
	f.p.Process(ctx, textInput("abc"), testSettings())

	require.Len(t, f.log.entries, 2)
	saved := f.log.entries[0]
	assert.Equal(t, "capture", saved.Event)
	assert.Equal(t, "saved", saved.Result)
	assert.Equal(t, "com.apple.TextEdit", saved.SourceID)
	assert.Equal(t, "text", saved.Kind)
	require.NotNil(t, saved.Size)
	assert.Equal(t, int64(3), *saved.Size)
	require.NotNil(t, saved.DurationMs)
	assert.GreaterOrEqual(t, *saved.DurationMs, int64(0))
	assert.False(t, saved.Timestamp.IsZero())

	skipped := f.log.entries[1]
	assert.Equal(t, "skipped", skipped.Result)
	assert.Equal(t, "duplicate", skipped.Reason)
}

func TestProcess_WithSQLStore(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	f := newFixture(t, history.NewSQLStore(conn))

	assert.Equal(t, OutcomeSaved, f.p.Process(ctx, textInput("sql"), testSettings()).Outcome)
	assert.Equal(t, Skipped(SkipDuplicate), f.p.Process(ctx, textInput("sql"), testSettings()))
}
