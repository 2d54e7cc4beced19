package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler renders one human-readable line per record:
//
//	2026-01-02 15:04:05 WARN  [1a2b3c4d] conversion · freecad (STL): export failed kind=timeout
//
// The request id, component, app and format attributes are lifted out of the
// key/value tail into the line prefix.
type consoleHandler struct {
	out       *syncWriter
	level     slog.Leveler
	addSource bool
	group     string
	fields    []field
}

type field struct {
	key   string
	value slog.Value
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{out: &syncWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.fields = slices.Clip(h.fields)
	for _, attr := range attrs {
		next.fields = appendField(next.fields, h.group, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clip(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.group, attr)
		return true
	})

	var head lineHead
	tail := make([]field, 0, len(fields))
	for _, f := range fields {
		if !head.take(f) {
			tail = append(tail, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Format(consoleTimeLayout))
	fmt.Fprintf(&b, " %-5s ", levelLabel(record.Level))
	if head.request != "" {
		b.WriteString("[" + shortRequestID(head.request) + "] ")
	}
	if subject := FormatSubject(head.component, head.app, head.format); subject != "" {
		b.WriteString(subject + ": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range tail {
		b.WriteString(" " + f.key + "=" + renderValue(f.value))
	}
	b.WriteByte('\n')
	return h.out.write(b.String())
}

// lineHead collects the attributes shown before the message. The first value
// seen for each key wins, so handler-bound context beats per-record repeats.
type lineHead struct {
	request, component, app, format string
}

func (l *lineHead) take(f field) bool {
	var slot *string
	switch f.key {
	case FieldRequestID:
		slot = &l.request
	case FieldComponent:
		slot = &l.component
	case FieldApp:
		slot = &l.app
	case FieldFormat:
		slot = &l.format
	default:
		return false
	}
	if *slot == "" {
		*slot = f.value.String()
	}
	return true
}

func shortRequestID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func appendField(dst []field, group string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		prefix := group
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, prefix, member)
		}
		return dst
	}
	return append(dst, field{key: group + attr.Key, value: attr.Value})
}

func renderValue(v slog.Value) string {
	var s string
	if v.Kind() == slog.KindTime {
		s = v.Time().UTC().Format(time.RFC3339)
	} else {
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	return s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
