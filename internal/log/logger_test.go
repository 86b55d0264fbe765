package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatPretty, ParseFormat("pretty"))
	assert.Equal(t, FormatPretty, ParseFormat(""))
	assert.Equal(t, FormatPretty, ParseFormat("nonsense"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "WARN", FormatJSON)

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestTerminalHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, WithoutColor())
	l := slog.New(h)

	l.Info("sync completed", "total", 42, "source", "sellers json")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "sync completed")
	assert.Contains(t, line, "total=42")
	assert.Contains(t, line, `source="sellers json"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTerminalHandlerGroupsAndWith(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, nil, WithoutColor())
	l := slog.New(h).With("run", "daily").WithGroup("db")

	l.Info("refreshed", "view", "publisher_list_view")

	line := buf.String()
	assert.Contains(t, line, "run=daily")
	assert.Contains(t, line, "db.view=publisher_list_view")
}
