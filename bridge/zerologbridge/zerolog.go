package zerologbridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/philipp01105/fastlogging/bridge"
	"github.com/philipp01105/fastlogging/core"
)

// Writer is a zerolog.LevelWriter that decodes zerolog's JSON events and
// emits them through fastlogging
type Writer struct {
	emitter bridge.Emitter
	domain  string
}

var _ zerolog.LevelWriter = (*Writer)(nil)

// NewWriter creates a writer emitting to e in domain
func NewWriter(e bridge.Emitter, domain string) *Writer {
	return &Writer{emitter: e, domain: domain}
}

// Write implements io.Writer. The level is read from the event.
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter
func (w *Writer) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var event map[string]any
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return 0, fmt.Errorf("%w: zerolog event: %w", core.ErrProtocol, err)
	}

	if level == zerolog.NoLevel {
		if s, ok := event[zerolog.LevelFieldName].(string); ok {
			if parsed, err := zerolog.ParseLevel(s); err == nil {
				level = parsed
			}
		}
	}
	msg, _ := event[zerolog.MessageFieldName].(string)

	fields := make([]bridge.Field, 0, len(event))
	for k, v := range event {
		switch k {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
			continue
		}
		fields = append(fields, bridge.Field{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

	w.emitter.Emit(LevelOf(level), w.domain, bridge.Format(msg, fields), "")
	return len(p), nil
}

// LevelOf converts a zerolog level to a core.Level. Events without level
// are logged at INFO.
func LevelOf(l zerolog.Level) core.Level {
	switch l {
	case zerolog.TraceLevel:
		return core.TraceLevel
	case zerolog.DebugLevel:
		return core.DebugLevel
	case zerolog.WarnLevel:
		return core.WarningLevel
	case zerolog.ErrorLevel:
		return core.ErrorLevel
	case zerolog.FatalLevel:
		return core.CriticalLevel
	case zerolog.PanicLevel:
		return core.ExceptionLevel
	default:
		return core.InfoLevel
	}
}
