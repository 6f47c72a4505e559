package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/muesli/termenv"
	"go.trai.ch/planar/internal/ui/output"
	"go.trai.ch/planar/internal/ui/style"
)

// PrettyHandler is a slog.Handler for terminals. Each record becomes one line:
// a level icon and the message in the level color, then key=value attributes
// dimmed. Values that would break the key=value layout, such as parse errors
// or labels with spaces, are quoted.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string // pre-rendered WithAttrs attributes
	group  string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	head := r.Message
	if icon != "" {
		head = icon + " " + head
	}

	var attrs strings.Builder
	attrs.WriteString(h.prefix)
	r.Attrs(func(attr slog.Attr) bool {
		appendAttr(&attrs, h.group, attr)
		return true
	})

	line := h.out.String(head).Foreground(color).String()
	if attrs.Len() > 0 {
		line += h.out.String(attrs.String()).Foreground(color).Faint().String()
	}
	_, err := h.out.WriteString(line + "\n")
	return err
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	case level < slog.LevelInfo:
		return style.Circle, termenv.RGBColor(string(style.Iris))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

// WithAttrs returns a new Handler with the given attributes rendered once up
// front.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, attr := range attrs {
		appendAttr(&b, h.group, attr)
	}

	clone := *h
	clone.prefix = b.String()
	return &clone
}

// WithGroup returns a new Handler that prefixes later keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// appendAttr writes " key=value". Group values are flattened into dotted keys.
func appendAttr(b *strings.Builder, group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		prefix := joinKey(group, attr.Key)
		for _, member := range attr.Value.Group() {
			appendAttr(b, prefix, member)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(joinKey(group, attr.Key))
	b.WriteByte('=')
	b.WriteString(formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	if v.Kind() == slog.KindDuration {
		return v.Duration().Round(time.Microsecond).String()
	}
	s := v.String()
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r)
	})
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	if key == "" {
		return group
	}
	return group + "." + key
}
