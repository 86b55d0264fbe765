// Package log configures structured logging for the sync pipeline. All
// packages log through the process-default slog logger; this package only
// decides how that logger renders.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output rendering.
type Format string

const (
	// FormatPretty renders single-line coloured output for terminals.
	FormatPretty Format = "pretty"
	// FormatJSON renders one JSON object per record for log collectors.
	FormatJSON Format = "json"
)

// ParseFormat maps a config string to a Format. Unknown values fall back
// to pretty rather than failing startup.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatPretty
}

// ParseLevel maps a config string to an slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w with the given level and format.
func New(w io.Writer, level string, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = newTerminalHandler(w, opts)
	}
	return slog.New(handler)
}

// Configure builds a stdout logger from the config strings and installs it
// as the process default.
func Configure(level string, format Format) *slog.Logger {
	l := New(os.Stdout, level, format)
	slog.SetDefault(l)
	return l
}
