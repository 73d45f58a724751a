package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentConfig holds the Fluent Bit forward-protocol endpoint.
type FluentConfig struct {
	Host      string
	Port      int
	TagPrefix string
}

// NewFluentClient creates the forward client. Creation does not dial, so an
// unreachable Fluent Bit only shows up as Post errors later.
func NewFluentClient(cfg FluentConfig) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluent tag prefix is required")
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create fluent client: %w", err)
	}
	return client, nil
}

type poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler is a slog.Handler that posts each record as a flat map,
// tagged with the lower-case level name.
type FluentHandler struct {
	client poster
	level  slog.Leveler
	attrs  map[string]any
	prefix string
}

func NewFluentHandler(client poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, attrs: map[string]any{}}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for k, v := range h.attrs {
		data[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.prefix, a)
		return true
	})
	data["level"] = strings.ToLower(r.Level.String())
	data["message"] = r.Message
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	data["timestamp"] = ts.UTC().Format(time.RFC3339Nano)

	return h.client.Post(strings.ToLower(r.Level.String()), data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		addAttr(next.attrs, h.prefix, a)
	}
	return next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *FluentHandler) clone() *FluentHandler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &FluentHandler{client: h.client, level: h.level, attrs: attrs, prefix: h.prefix}
}

func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if err, ok := v.Any().(error); ok {
		dst[prefix+a.Key] = err.Error()
		return
	}
	dst[prefix+a.Key] = v.Any()
}
