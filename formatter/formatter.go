package formatter

import (
	"bytes"
	"sync"

	"github.com/philipp01105/fastlogging/core"
)

// DefaultTimestampFormat renders times as 2006.01.02 15:04:05
const DefaultTimestampFormat = "2006.01.02 15:04:05"

// Formatter renders a record into a caller-provided buffer.
type Formatter interface {
	// FormatRecord appends the rendering of rec, including the trailing
	// newline, to buf.
	FormatRecord(rec *core.Record, buf *bytes.Buffer)
}

// Config holds common formatter configuration
type Config struct {
	// TimestampFormat specifies the time layout (empty for the package default)
	TimestampFormat string
}

var (
	defaultText = NewTextFormatter(Config{})
	defaultJSON = NewJSONFormatter(Config{})
	defaultXML  = NewXMLFormatter(Config{})
)

// For returns the default formatter for the structure the record asks for.
func For(rec *core.Record) Formatter {
	switch rec.Structured {
	case core.StructJSON:
		return defaultJSON
	case core.StructXML:
		return defaultXML
	default:
		return defaultText
	}
}

// Format renders rec with the formatter selected by For into buf.
func Format(rec *core.Record, buf *bytes.Buffer) {
	For(rec).FormatRecord(rec, buf)
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

// GetBuffer returns an empty buffer from the pool
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns buf to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
