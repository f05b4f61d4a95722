package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestInitComponentLogger(t *testing.T) {
	resetGlobal(t)

	var buf bytes.Buffer
	Init("info", "json", &buf)

	L("monitor").Info().Str("kind", "text").Msg("captured")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "monitor", line[KeyComponent])
	assert.Equal(t, "captured", line["message"])
	assert.Equal(t, "text", line["kind"])
}

func TestInitRespectsLevel(t *testing.T) {
	resetGlobal(t)

	var buf bytes.Buffer
	Init("warn", "console", &buf)

	L("config").Info().Msg("hidden")
	L("config").Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=config")
}

func TestEventLog_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf)

	size := int64(42)
	dur := int64(3)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	el.Log(Entry{
		Event:      "capture",
		Result:     "skipped",
		Reason:     "duplicate",
		SourceID:   "com.apple.TextEdit",
		Kind:       "text",
		Size:       &size,
		DurationMs: &dur,
		Timestamp:  ts,
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "capture", line[KeyEvent])
	assert.Equal(t, "skipped", line[KeyResult])
	assert.Equal(t, "duplicate", line[KeyReason])
	assert.Equal(t, "com.apple.TextEdit", line[KeySourceID])
	assert.Equal(t, "text", line[KeyKind])
	assert.Equal(t, float64(42), line[KeySize])
	assert.Equal(t, float64(3), line[KeyDurationMs])
	assert.Equal(t, "2026-01-02T03:04:05Z", line[KeyTimestamp])
	assert.NotContains(t, line, "level")
}

func TestEventLog_OmitsUnsetFields(t *testing.T) {
	var buf bytes.Buffer
	NewEventLog(&buf).Log(Entry{Event: "capture", Result: "saved"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, KeyReason)
	assert.NotContains(t, line, KeySize)
	assert.Contains(t, line, KeyTimestamp)
}

func TestEventLog_IgnoresGlobalLevel(t *testing.T) {
	resetGlobal(t)
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	var buf bytes.Buffer
	NewEventLog(&buf).Log(Entry{Event: "capture", Result: "saved"})

	assert.NotEmpty(t, buf.String())
}

func TestOpenEventLog_Rotates(t *testing.T) {
	dir := t.TempDir()

	el, err := OpenEventLog(dir, 200, 3)
	require.NoError(t, err)
	defer el.Close()

	for i := 0; i < 20; i++ {
		el.Log(Entry{Event: "capture", Result: "saved", Detail: strings.Repeat("x", 40)})
	}

	live := filepath.Join(dir, EventLogFile)
	_, err = os.Stat(live)
	require.NoError(t, err)
	_, err = os.Stat(live + ".1")
	assert.NoError(t, err)
	_, err = os.Stat(live + ".2")
	assert.NoError(t, err)
	_, err = os.Stat(live + ".3")
	assert.True(t, os.IsNotExist(err), "maxFiles=3 keeps the live file and two backups")

	f, err := os.Open(live)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]any
		assert.NoError(t, json.Unmarshal(scanner.Bytes(), &line), "every line is whole JSON")
	}
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0600))

	rw, err := NewRotatingWriter(path, 1024, 2)
	require.NoError(t, err)
	_, err = rw.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.Log(Entry{Event: "capture"})
}
