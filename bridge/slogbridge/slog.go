package slogbridge

import (
	"context"
	"log/slog"

	"github.com/philipp01105/fastlogging/bridge"
	"github.com/philipp01105/fastlogging/core"
)

// Handler implements slog.Handler on top of an Emitter. This allows
// fastlogging to be used as the backend of log/slog.
type Handler struct {
	emitter bridge.Emitter
	level   core.Level
	domain  string
	attrs   []bridge.Field
	group   string
}

// NewHandler creates a slog.Handler emitting records of at least level to
// e. An empty domain uses the domain of the emitter.
func NewHandler(e bridge.Emitter, level core.Level, domain string) *Handler {
	return &Handler{
		emitter: e,
		level:   level,
		domain:  domain,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return LevelOf(level) >= h.level
}

// Handle emits the record with its attributes appended to the message.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]bridge.Field, len(h.attrs), len(h.attrs)+record.NumAttrs())
	copy(fields, h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.group, a)
		return true
	})
	h.emitter.Emit(LevelOf(record.Level), h.domain, bridge.Format(record.Message, fields), "")
	return nil
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]bridge.Field, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)
	for _, a := range attrs {
		c.attrs = appendAttr(c.attrs, h.group, a)
	}
	return &c
}

// WithGroup returns a new Handler that prefixes later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return &c
}

// LevelOf converts a slog.Level to a core.Level.
func LevelOf(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError+4:
		return core.CriticalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

// appendAttr flattens a into fields, prefixing keys with the group path.
func appendAttr(fields []bridge.Field, group string, a slog.Attr) []bridge.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, key, ga)
		}
		return fields
	}
	return append(fields, bridge.Field{Key: key, Value: a.Value.Any()})
}
