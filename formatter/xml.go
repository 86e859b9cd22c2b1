package formatter

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

// XMLFormatter renders records as one <log> element per line
type XMLFormatter struct {
	Config
}

// NewXMLFormatter creates a new XML formatter
func NewXMLFormatter(cfg Config) *XMLFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &XMLFormatter{Config: cfg}
}

// FormatRecord implements Formatter
func (f *XMLFormatter) FormatRecord(rec *core.Record, buf *bytes.Buffer) {
	buf.WriteString("<log><time>")
	buf.Write(rec.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteString("</time><level>")
	buf.WriteString(rec.Syms.Render(rec.Level))
	buf.WriteString("</level>")
	writeElement(buf, "domain", rec.Domain)

	if rec.Present.Has(core.WithHostname) {
		writeElement(buf, "hostname", rec.Hostname)
	}
	if rec.Present.Has(core.WithProcessName) {
		writeElement(buf, "pname", rec.ProcessName)
	}
	if rec.Present.Has(core.WithPID) {
		buf.WriteString("<pid>")
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(rec.PID), 10))
		buf.WriteString("</pid>")
	}
	if rec.Present.Has(core.WithThreadName) {
		writeElement(buf, "tname", rec.ThreadName)
	}
	if rec.Present.Has(core.WithThreadID) {
		buf.WriteString("<tid>")
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), rec.ThreadID, 10))
		buf.WriteString("</tid>")
	}

	writeElement(buf, "message", rec.Message)
	buf.WriteString("</log>\n")
}

func writeElement(buf *bytes.Buffer, name, value string) {
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteByte('>')
	// bytes.Buffer writes never fail
	_ = xml.EscapeText(buf, []byte(value))
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}
