package formatter

import (
	"bytes"
	"strconv"

	"github.com/philipp01105/fastlogging/core"
)

// TextFormatter renders records as one human-readable line:
//
//	2024.03.01 12:00:00 host pname[pid] tname(tid) domain LEVEL: message
//
// Enrichment parts appear only when present on the record.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = DefaultTimestampFormat
	}
	return &TextFormatter{Config: cfg}
}

// FormatRecord implements Formatter
func (f *TextFormatter) FormatRecord(rec *core.Record, buf *bytes.Buffer) {
	buf.Write(rec.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if rec.Present.Has(core.WithHostname) {
		buf.WriteByte(' ')
		buf.WriteString(rec.Hostname)
	}
	hasPName := rec.Present.Has(core.WithProcessName)
	hasPID := rec.Present.Has(core.WithPID)
	if hasPName || hasPID {
		buf.WriteByte(' ')
		if hasPName {
			buf.WriteString(rec.ProcessName)
		}
		if hasPID {
			buf.WriteByte('[')
			buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(rec.PID), 10))
			buf.WriteByte(']')
		}
	}
	hasTName := rec.Present.Has(core.WithThreadName)
	hasTID := rec.Present.Has(core.WithThreadID)
	if hasTName || hasTID {
		buf.WriteByte(' ')
		if hasTName {
			buf.WriteString(rec.ThreadName)
		}
		if hasTID {
			buf.WriteByte('(')
			buf.Write(strconv.AppendUint(buf.AvailableBuffer(), rec.ThreadID, 10))
			buf.WriteByte(')')
		}
	}

	if rec.Domain != "" {
		buf.WriteByte(' ')
		buf.WriteString(rec.Domain)
	}
	buf.WriteByte(' ')
	buf.WriteString(rec.Syms.Render(rec.Level))
	buf.WriteString(": ")
	buf.WriteString(rec.Message)
	buf.WriteByte('\n')
}
