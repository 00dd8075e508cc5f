package xerr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Formatter renders a single log record to bytes.
type Formatter interface {
	Format(r slog.Record, groups []string) []byte
}

// Handler is a slog.Handler whose level, formatter, and output stream can be
// reconfigured after construction: the CLI parses flags before logging is
// fully configured, so the handler used during early startup is adjusted in
// place rather than replaced.
type Handler struct {
	mu        sync.Mutex
	level     slog.LevelVar
	formatter Formatter
	w         io.Writer
	groups    []string
	attrs     []slog.Attr
	buf       bytes.Buffer
}

// NewHandler creates a handler at Info level writing to stderr with a plain
// formatter, to be reconfigured once flags are parsed.
func NewHandler() *Handler {
	h := &Handler{
		formatter: NewPlainFormatter(),
		w:         os.Stderr,
	}
	h.level.Set(slog.LevelInfo)
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Write(h.formatter.Format(r, h.groups))
	h.buf.WriteByte('\n')
	_, err := h.w.Write(h.buf.Bytes())
	h.buf.Reset()
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &n
}

func (h *Handler) WithGroup(name string) slog.Handler {
	n := *h
	n.groups = append(append([]string{}, h.groups...), name)
	return &n
}

// SetLevel changes the minimum level handled, taking effect immediately.
func (h *Handler) SetLevel(level slog.Level) { h.level.Set(level) }

// SetFormatter swaps the record formatter.
func (h *Handler) SetFormatter(f Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formatter = f
}

// SetStream redirects subsequent output.
func (h *Handler) SetStream(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.w = w
}

// Flush is a no-op placeholder for parity with buffered handler
// implementations; Handle writes synchronously.
func (h *Handler) Flush() {}

// PlainFormatter renders "LEVEL message key=value ..." with no color, used
// for non-TTY and CI output.
type PlainFormatter struct {
	verbose bool
}

func NewPlainFormatter() *PlainFormatter { return &PlainFormatter{} }

func (f *PlainFormatter) SetVerbose(v bool) { f.verbose = v }

func (f *PlainFormatter) Format(r slog.Record, groups []string) []byte {
	var b strings.Builder
	if f.verbose {
		b.WriteString(r.Time.Format(time.RFC3339))
		b.WriteByte(' ')
	}
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('.')
	}
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	return []byte(b.String())
}

// PrettyFormatter renders colorized, human-oriented output for an
// interactive terminal.
type PrettyFormatter struct {
	tty     bool
	verbose bool
}

// NewPrettyFormatter creates a formatter that colorizes output only when tty
// is true; the CLI probes os.Stderr with an isatty check before constructing
// it.
func NewPrettyFormatter(tty bool) *PrettyFormatter {
	return &PrettyFormatter{tty: tty}
}

func (f *PrettyFormatter) SetVerbose(v bool) { f.verbose = v }

func (f *PrettyFormatter) Format(r slog.Record, groups []string) []byte {
	levelColor := levelColor(r.Level)
	var b strings.Builder

	if f.verbose {
		b.WriteString(color.New(color.Faint).Sprint(r.Time.Format("15:04:05.000")))
		b.WriteByte(' ')
	}

	if f.tty {
		b.WriteString(levelColor.Sprintf("%-5s", levelTag(r.Level)))
	} else {
		b.WriteString(levelTag(r.Level))
	}
	b.WriteByte(' ')

	if len(groups) > 0 {
		b.WriteString(color.New(color.Faint).Sprint(strings.Join(groups, ".") + ": "))
	}

	b.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		if f.tty {
			b.WriteString(color.New(color.Faint).Sprint(a.Key + "="))
		} else {
			b.WriteString(a.Key + "=")
		}
		fmt.Fprintf(&b, "%v", a.Value.Any())
		return true
	})

	return []byte(b.String())
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case l >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case l >= slog.LevelInfo:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgMagenta)
	}
}
