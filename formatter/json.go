package formatter

import (
	"bytes"
	"strconv"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

// JSONFormatter renders records as one JSON object per line
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// FormatRecord builds JSON manually into the buffer without allocations
func (f *JSONFormatter) FormatRecord(rec *core.Record, buf *bytes.Buffer) {
	buf.WriteString(`{"time":"`)
	buf.Write(rec.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteString(`","level":"`)
	buf.WriteString(rec.Syms.Render(rec.Level))
	buf.WriteString(`","domain":"`)
	appendJSONString(buf, rec.Domain)
	buf.WriteByte('"')

	if rec.Present.Has(core.WithHostname) {
		buf.WriteString(`,"hostname":"`)
		appendJSONString(buf, rec.Hostname)
		buf.WriteByte('"')
	}
	if rec.Present.Has(core.WithProcessName) {
		buf.WriteString(`,"pname":"`)
		appendJSONString(buf, rec.ProcessName)
		buf.WriteByte('"')
	}
	if rec.Present.Has(core.WithPID) {
		buf.WriteString(`,"pid":`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(rec.PID), 10))
	}
	if rec.Present.Has(core.WithThreadName) {
		buf.WriteString(`,"tname":"`)
		appendJSONString(buf, rec.ThreadName)
		buf.WriteByte('"')
	}
	if rec.Present.Has(core.WithThreadID) {
		buf.WriteString(`,"tid":`)
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), rec.ThreadID, 10))
	}

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, rec.Message)
	buf.WriteString("\"}\n")
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}
