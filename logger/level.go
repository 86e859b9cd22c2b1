package logger

import (
	"github.com/philipp01105/fastlogging/core"
)

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	NotSetLevel    = core.NotSetLevel
	TraceLevel     = core.TraceLevel
	DebugLevel     = core.DebugLevel
	InfoLevel      = core.InfoLevel
	SuccessLevel   = core.SuccessLevel
	WarningLevel   = core.WarningLevel
	ErrorLevel     = core.ErrorLevel
	CriticalLevel  = core.CriticalLevel
	FatalLevel     = core.FatalLevel
	ExceptionLevel = core.ExceptionLevel
	NoLogLevel     = core.NoLogLevel
)

// ParseLevel converts a level name or number to a Level
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}
