package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Key constants for structured log fields.
const (
	KeyComponent  = "component"
	KeyEvent      = "event"
	KeyResult     = "result"
	KeyReason     = "reason"
	KeyDetail     = "detail"
	KeySourceID   = "source_id"
	KeyKind       = "kind"
	KeySize       = "size"
	KeyDurationMs = "duration_ms"
	KeyTimestamp  = "timestamp"
)

// Init configures the global diagnostic logger.
// format: "json" or "console" (default "console")
// level: "debug", "info", "warn", "error" (default "info")
// output: writer to log to (nil = os.Stderr)
func Init(level, format string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(level))

	if !strings.EqualFold(format, "json") {
		output = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// L returns the global logger tagged with a component name.
func L(component string) *zerolog.Logger {
	l := log.Logger.With().Str(KeyComponent, component).Logger()
	return &l
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
