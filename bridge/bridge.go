package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/formatter"
)

// Emitter receives the records of a bridge. *logging.Logging implements it.
type Emitter interface {
	Emit(level core.Level, domain, message, thread string)
}

// Field is a key/value pair carried by a foreign logging API
type Field struct {
	Key   string
	Value any
}

// Format renders msg followed by the fields as key=value pairs. Values
// containing spaces, quotes or '=' are quoted.
func Format(msg string, fields []Field) string {
	if len(fields) == 0 {
		return msg
	}
	b := formatter.GetBuffer()
	defer formatter.PutBuffer(b)
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
	}
	return b.String()
}

func formatValue(v any) string {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case error:
		s = v.Error()
	case fmt.Stringer:
		s = v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
