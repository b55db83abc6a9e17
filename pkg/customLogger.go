package ssacal

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// BracketHandler writes records as "[time] [attr]... message", one line
// each. Attribute keys are dropped, so callers pass the module name as the
// only attribute.
type BracketHandler struct {
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

func NewBracketHandler(out io.Writer, level slog.Leveler) *BracketHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &BracketHandler{level: level, mu: &sync.Mutex{}, out: out}
}

func (h *BracketHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *BracketHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BracketHandler{level: h.level, attrs: merged, mu: h.mu, out: h.out}
}

// Groups only qualify keys, which are not printed.
func (h *BracketHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *BracketHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("[2006/01/02 15:04:05]"))
	writeAttr := func(a slog.Attr) bool {
		b.WriteString(" [")
		b.WriteString(a.Value.String())
		b.WriteString("]")
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	b.WriteString(" ")
	b.WriteString(r.Message)
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// SlogLogger sends info messages to a bracketed text handler and errors
// to a JSON handler.
type SlogLogger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func NewSlogLogger(stdout io.Writer, stderr io.Writer, level slog.Level) SlogLogger {
	return SlogLogger{
		InfoLog:  slog.New(NewBracketHandler(stdout, level)),
		ErrorLog: slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
}

func (l SlogLogger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l SlogLogger) Error(message string) {
	l.ErrorLog.Error(message)
}
