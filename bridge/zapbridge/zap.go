package zapbridge

import (
	"sort"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/fastlogging/bridge"
	"github.com/philipp01105/fastlogging/core"
)

// Core is a zapcore.Core that emits through fastlogging
type Core struct {
	zapcore.LevelEnabler
	emitter bridge.Emitter
	domain  string
	fields  []zapcore.Field
}

// NewCore creates a core emitting entries enabled by enab to e. The name
// of a zap logger, when set, is used as the domain; otherwise domain is.
func NewCore(e bridge.Emitter, domain string, enab zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: enab, emitter: e, domain: domain}
}

// With implements zapcore.Core
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

// Check implements zapcore.Core
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write implements zapcore.Core
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	out := make([]bridge.Field, 0, len(enc.Fields))
	for k, v := range enc.Fields {
		out = append(out, bridge.Field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	domain := c.domain
	if ent.LoggerName != "" {
		domain = ent.LoggerName
	}
	c.emitter.Emit(LevelOf(ent.Level), domain, bridge.Format(ent.Message, out), "")
	return nil
}

// Sync implements zapcore.Core. Writers are synced through the coordinator.
func (c *Core) Sync() error {
	return nil
}

// LevelOf converts a zap level to a core.Level
func LevelOf(l zapcore.Level) core.Level {
	switch l {
	case zapcore.DebugLevel:
		return core.DebugLevel
	case zapcore.InfoLevel:
		return core.InfoLevel
	case zapcore.WarnLevel:
		return core.WarningLevel
	case zapcore.ErrorLevel:
		return core.ErrorLevel
	case zapcore.DPanicLevel, zapcore.FatalLevel:
		return core.CriticalLevel
	case zapcore.PanicLevel:
		return core.ExceptionLevel
	}
	if l < zapcore.DebugLevel {
		return core.TraceLevel
	}
	return core.CriticalLevel
}
