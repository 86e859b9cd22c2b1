package logrusbridge

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/philipp01105/fastlogging/bridge"
	"github.com/philipp01105/fastlogging/core"
)

// Hook is a logrus.Hook that emits every entry through fastlogging
type Hook struct {
	emitter bridge.Emitter
	domain  string
	levels  []logrus.Level
}

// NewHook creates a hook for the given logrus levels (default: all levels)
func NewHook(e bridge.Emitter, domain string, levels ...logrus.Level) *Hook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &Hook{emitter: e, domain: domain, levels: levels}
}

// Levels implements logrus.Hook
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook
func (h *Hook) Fire(entry *logrus.Entry) error {
	fields := make([]bridge.Field, 0, len(entry.Data))
	for k, v := range entry.Data {
		fields = append(fields, bridge.Field{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	h.emitter.Emit(LevelOf(entry.Level), h.domain, bridge.Format(entry.Message, fields), "")
	return nil
}

// LevelOf converts a logrus level to a core.Level
func LevelOf(l logrus.Level) core.Level {
	switch l {
	case logrus.PanicLevel:
		return core.ExceptionLevel
	case logrus.FatalLevel:
		return core.CriticalLevel
	case logrus.ErrorLevel:
		return core.ErrorLevel
	case logrus.WarnLevel:
		return core.WarningLevel
	case logrus.InfoLevel:
		return core.InfoLevel
	case logrus.DebugLevel:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}
