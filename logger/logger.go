package logger

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/logging"
	"github.com/philipp01105/fastlogging/writer"
	"github.com/philipp01105/fastlogging/writer/consolewriter"
)

// Logger is a handle for emitting records. It either routes through a
// shared *logging.Logging or, without one, writes synchronously to its
// own console output.
//
// The domain and thread name are fixed at construction; only the level
// can change afterwards.
type Logger struct {
	logging *logging.Logging
	private writer.Writer
	level   atomic.Uint32
	domain  string
	thread  string
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	logging *logging.Logging
	level   core.Level
	domain  string
	thread  string
	output  io.Writer
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level: core.NotSetLevel, // the coordinator and writers decide
	}
}

// WithLogging routes records through l
func (b *Builder) WithLogging(l *logging.Logging) *Builder {
	b.logging = l
	return b
}

// WithLevel sets the handle level. Records below it are dropped before
// anything is allocated.
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithDomain overrides the domain of the coordinator for this handle
func (b *Builder) WithDomain(domain string) *Builder {
	b.domain = domain
	return b
}

// WithThreadName names the records of this handle when thread names are
// enabled in the coordinator's ExtConfig
func (b *Builder) WithThreadName(name string) *Builder {
	b.thread = name
	return b
}

// WithOutput sets the output of a handle without coordinator (default:
// os.Stderr). It is ignored when WithLogging is used.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	l := &Logger{
		logging: b.logging,
		domain:  b.domain,
		thread:  b.thread,
	}
	l.level.Store(uint32(b.level))
	if l.logging == nil {
		if l.domain == "" {
			l.domain = logging.DefaultDomain
		}
		// A sync console writer without filters cannot fail to build.
		cw, _ := consolewriter.New(consolewriter.Config{
			Target: consolewriter.TargetStderr,
			Stderr: b.output,
		})
		l.private = cw
	}
	return l
}

// WithDomain returns a new Logger that shares the routing of l but emits
// in another domain
func (l *Logger) WithDomain(domain string) *Logger {
	c := &Logger{
		logging: l.logging,
		private: l.private,
		domain:  domain,
		thread:  l.thread,
	}
	c.level.Store(l.level.Load())
	return c
}

// Level returns the handle level
func (l *Logger) Level() core.Level {
	return core.Level(l.level.Load())
}

// SetLevel changes the handle level
func (l *Logger) SetLevel(level core.Level) {
	l.level.Store(uint32(level))
}

// Enabled reports whether the handle lets records of level through. A
// handle at NoLogLevel lets nothing through.
func (l *Logger) Enabled(level core.Level) bool {
	hl := core.Level(l.level.Load())
	return hl != core.NoLogLevel && level >= hl
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string) {
	// Level check optimization - exit early BEFORE any allocations
	if !l.Enabled(level) {
		return
	}
	l.log(level, msg)
}

func (l *Logger) log(level core.Level, msg string) {
	if l.logging != nil {
		l.logging.Emit(level, l.domain, msg, l.thread)
		return
	}
	// The private output follows the same rule as coordinator writers, so
	// a console that disabled itself after an error stays quiet.
	if !writer.Accepts(l.private, level) {
		return
	}
	l.private.Enqueue(core.NewRecord(level, l.domain, msg, l.thread, nil, core.SymsStr))
}

func (l *Logger) logf(level core.Level, format string, args []any) {
	if !l.Enabled(level) {
		return
	}
	l.log(level, fmt.Sprintf(format, args...))
}

// Trace logs a trace message
func (l *Logger) Trace(msg string) { l.Log(core.TraceLevel, msg) }

// Debug logs a debug message
func (l *Logger) Debug(msg string) { l.Log(core.DebugLevel, msg) }

// Info logs an info message
func (l *Logger) Info(msg string) { l.Log(core.InfoLevel, msg) }

// Success logs a success message
func (l *Logger) Success(msg string) { l.Log(core.SuccessLevel, msg) }

// Warning logs a warning message
func (l *Logger) Warning(msg string) { l.Log(core.WarningLevel, msg) }

// Error logs an error message
func (l *Logger) Error(msg string) { l.Log(core.ErrorLevel, msg) }

// Critical logs a critical message
func (l *Logger) Critical(msg string) { l.Log(core.CriticalLevel, msg) }

// Fatal logs at CRITICAL. It does not exit the program.
func (l *Logger) Fatal(msg string) { l.Log(core.FatalLevel, msg) }

// Exception logs an exception message
func (l *Logger) Exception(msg string) { l.Log(core.ExceptionLevel, msg) }

// Tracef logs a trace message with formatting
func (l *Logger) Tracef(format string, args ...any) { l.logf(core.TraceLevel, format, args) }

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...any) { l.logf(core.DebugLevel, format, args) }

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...any) { l.logf(core.InfoLevel, format, args) }

// Successf logs a success message with formatting
func (l *Logger) Successf(format string, args ...any) { l.logf(core.SuccessLevel, format, args) }

// Warningf logs a warning message with formatting
func (l *Logger) Warningf(format string, args ...any) { l.logf(core.WarningLevel, format, args) }

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...any) { l.logf(core.ErrorLevel, format, args) }

// Criticalf logs a critical message with formatting
func (l *Logger) Criticalf(format string, args ...any) { l.logf(core.CriticalLevel, format, args) }

// Fatalf logs at CRITICAL with formatting. It does not exit the program.
func (l *Logger) Fatalf(format string, args ...any) { l.logf(core.FatalLevel, format, args) }

// Exceptionf logs an exception message with formatting
func (l *Logger) Exceptionf(format string, args ...any) { l.logf(core.ExceptionLevel, format, args) }

// Close releases the private output of a handle without coordinator. The
// coordinator of a shared handle is left alone.
func (l *Logger) Close() error {
	if l.private != nil {
		return l.private.Close()
	}
	return nil
}
