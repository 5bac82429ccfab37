package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ConsoleHandler is a slog.Handler that writes one human-readable line per
// record:
//
//	2006-01-02T15:04:05Z07:00 rampart[pid]: [level] component: message key=value
type ConsoleHandler struct {
	opts   slog.HandlerOptions
	prefix string
	out    io.Writer
	mu     *sync.Mutex

	component string
	attrs     []slog.Attr // already qualified with their group
	group     string
}

// NewConsoleHandler creates a handler writing to out. An empty prefix
// means "rampart".
func NewConsoleHandler(out io.Writer, prefix string, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	if prefix == "" {
		prefix = "rampart"
	}
	return &ConsoleHandler{
		opts:   *opts,
		prefix: fmt.Sprintf("%s[%d]: ", strings.ToLower(prefix), os.Getpid()),
		out:    out,
		mu:     &sync.Mutex{},
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}

	var b strings.Builder
	b.WriteString(t.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(h.prefix)
	b.WriteString("[" + strings.ToLower(r.Level.String()) + "] ")

	component := h.component
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" && h.group == "" {
			component = a.Value.String()
		} else {
			recAttrs = append(recAttrs, h.qualify(a))
		}
		return true
	})
	if component != "" {
		b.WriteString(strings.ToLower(component) + ": ")
	}
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	for _, a := range recAttrs {
		writeAttr(&b, a)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *ConsoleHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			sub.Key = a.Key + "." + sub.Key
			writeAttr(b, sub)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	val := a.Value.String()
	if val == "" || strings.ContainsAny(val, " \t\n\"=") {
		val = strconv.Quote(val)
	}
	b.WriteString(val)
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == "component" && h.group == "" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

// WithGroup prefixes the keys of later attributes with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = name
	if h.group != "" {
		next.group = h.group + "." + name
	}
	return &next
}
