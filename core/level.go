package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Level represents the severity level of a log record.
// Values between the named levels are valid and behave like the
// next lower named level when rendered.
type Level uint8

const (
	// NotSetLevel lets every record through
	NotSetLevel Level = 0
	// TraceLevel for very fine grained diagnostics
	TraceLevel Level = 5
	// DebugLevel for detailed debugging information
	DebugLevel Level = 10
	// InfoLevel for general informational messages
	InfoLevel Level = 20
	// SuccessLevel for positive outcomes worth highlighting
	SuccessLevel Level = 25
	// WarningLevel for warning messages
	WarningLevel Level = 30
	// ErrorLevel for error messages
	ErrorLevel Level = 40
	// CriticalLevel for failures the application may not survive
	CriticalLevel Level = 50
	// FatalLevel is an alias of CriticalLevel
	FatalLevel = CriticalLevel
	// ExceptionLevel for unexpected failures, usually with a traceback
	ExceptionLevel Level = 60
	// NoLogLevel disables a destination. Nothing is delivered to a writer
	// whose level is NoLogLevel.
	NoLogLevel Level = 100
)

var canonicalLevels = [...]Level{
	NoLogLevel,
	ExceptionLevel,
	CriticalLevel,
	ErrorLevel,
	WarningLevel,
	SuccessLevel,
	InfoLevel,
	DebugLevel,
	TraceLevel,
	NotSetLevel,
}

// Canonical returns the highest named level that is not above l.
func (l Level) Canonical() Level {
	for _, c := range canonicalLevels {
		if l >= c {
			return c
		}
	}
	return NotSetLevel
}

type levelNames struct {
	str   string
	short string
	sym   string
}

var names = map[Level]levelNames{
	NotSetLevel:    {"NOTSET", "NOT", "N"},
	TraceLevel:     {"TRACE", "TRC", "T"},
	DebugLevel:     {"DEBUG", "DBG", "D"},
	InfoLevel:      {"INFO", "INF", "I"},
	SuccessLevel:   {"SUCCESS", "SUC", "S"},
	WarningLevel:   {"WARNING", "WRN", "W"},
	ErrorLevel:     {"ERROR", "ERR", "E"},
	CriticalLevel:  {"CRITICAL", "CRT", "C"},
	ExceptionLevel: {"EXCEPTION", "EXC", "!"},
	NoLogLevel:     {"NOLOG", "NOL", "-"},
}

// String returns the full upper-case name of the level
func (l Level) String() string {
	return names[l.Canonical()].str
}

// Short returns the three letter name of the level
func (l Level) Short() string {
	return names[l.Canonical()].short
}

// Sym returns the one character symbol of the level
func (l Level) Sym() string {
	return names[l.Canonical()].sym
}

// IsNamed reports whether l is exactly one of the named levels.
func (l Level) IsNamed() bool {
	_, ok := names[l]
	return ok
}

// MarshalText renders named levels by name and all others as a number.
func (l Level) MarshalText() ([]byte, error) {
	if l.IsNamed() {
		return []byte(l.String()), nil
	}
	return strconv.AppendUint(nil, uint64(l), 10), nil
}

// UnmarshalText accepts everything ParseLevel accepts.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name, alias or decimal number to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOTSET":
		return NotSetLevel, nil
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "SUCCESS":
		return SuccessLevel, nil
	case "WARNING", "WARN":
		return WarningLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return CriticalLevel, nil
	case "EXCEPTION":
		return ExceptionLevel, nil
	case "NOLOG":
		return NoLogLevel, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return NotSetLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return Level(n), nil
}

// LevelSyms selects how a level is rendered in formatted output.
type LevelSyms uint8

const (
	// SymsStr renders the full name, e.g. WARNING (default)
	SymsStr LevelSyms = iota
	// SymsShort renders three letters, e.g. WRN
	SymsShort
	// SymsSym renders a single character, e.g. W
	SymsSym
)

// Render returns the rendering of l selected by s.
func (s LevelSyms) Render(l Level) string {
	n := names[l.Canonical()]
	switch s {
	case SymsShort:
		return n.short
	case SymsSym:
		return n.sym
	default:
		return n.str
	}
}

// String returns the configuration name of the rendering mode
func (s LevelSyms) String() string {
	switch s {
	case SymsShort:
		return "short"
	case SymsSym:
		return "sym"
	default:
		return "str"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s LevelSyms) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *LevelSyms) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "str":
		*s = SymsStr
	case "short":
		*s = SymsShort
	case "sym":
		*s = SymsSym
	default:
		return fmt.Errorf("%w: unknown level symbols %q", ErrConfiguration, text)
	}
	return nil
}
