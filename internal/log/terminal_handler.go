package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// TerminalHandler renders records as single-line coloured text for
// interactive use:
//
//	15:04:05 INFO  sync completed total=1204533
//
// Attributes added via WithAttrs are rendered once and cached, so loggers
// built with With() pay the formatting cost up front.
type TerminalHandler struct {
	out     io.Writer
	level   slog.Leveler
	mu      *sync.Mutex
	prefix  string // dotted group path for subsequent attrs
	rolled  string // pre-rendered WithAttrs output
	noColor bool
}

// TerminalOption configures a TerminalHandler.
type TerminalOption func(*TerminalHandler)

// WithoutColor disables ANSI escapes, for non-TTY output.
func WithoutColor() TerminalOption {
	return func(h *TerminalHandler) { h.noColor = true }
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions, topts ...TerminalOption) *TerminalHandler {
	h := &TerminalHandler{
		out:   w,
		level: slog.LevelInfo,
		mu:    &sync.Mutex{},
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	for _, opt := range topts {
		opt(h)
	}
	return h
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(192)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.paint(&b, colorDim, ts.Format("15:04:05"))
	b.WriteByte(' ')
	h.paint(&b, levelColor(r.Level), levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.rolled)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a, h.prefix)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.rolled)
	for _, a := range attrs {
		h.writeAttr(&b, a, h.prefix)
	}
	clone := *h
	clone.rolled = b.String()
	return &clone
}

func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *TerminalHandler) writeAttr(b *strings.Builder, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, ga, sub)
		}
		return
	}
	b.WriteByte(' ')
	h.paint(b, colorDim, prefix+a.Key+"=")
	b.WriteString(renderValue(a.Value))
}

func (h *TerminalHandler) paint(b *strings.Builder, color, s string) {
	if h.noColor {
		b.WriteString(s)
		return
	}
	b.WriteString(color)
	b.WriteString(s)
	b.WriteString(colorReset)
}

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO "
	case level < slog.LevelError:
		return "WARN "
	default:
		return "ERROR"
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorCyan
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func renderValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
