package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/logging"
	"github.com/philipp01105/fastlogging/writer/consolewriter"
)

var (
	defaultLogger  *Logger
	defaultLogging *logging.Logging // created by Default, owned by this package
	defaultMu      sync.Mutex
)

// Default returns the default logger. On first use it creates a
// coordinator at INFO with a console writer and merges the file found by
// logging.DefaultConfigFile into it, replacing writers it redefines.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil {
		return defaultLogger
	}
	l, err := logging.New(logging.Config{
		Level:   core.InfoLevel,
		Writers: []logging.WriterConfig{{Console: &consolewriter.Config{Target: consolewriter.TargetBoth}}},
	})
	if err != nil {
		// Not reachable with the fixed configuration above; fall back to
		// a private handle.
		defaultLogger = NewBuilder().WithLevel(core.InfoLevel).Build()
		return defaultLogger
	}
	if path, ok := logging.DefaultConfigFile(); ok {
		if err := l.MergeFile(path, logging.MergeReplace); err != nil {
			fmt.Fprintf(os.Stderr, "fastlogging: applying %s: %v\n", path, err)
		}
	}
	defaultLogging = l
	defaultLogger = NewBuilder().WithLogging(l).Build()
	return defaultLogger
}

// SetDefault sets the default logger. A coordinator created by Default is
// shut down.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	old := defaultLogging
	defaultLogger = l
	defaultLogging = nil
	defaultMu.Unlock()
	if old != nil {
		_ = old.Shutdown(false)
	}
}

// ShutdownDefault shuts down the coordinator created by Default. The next
// call to Default creates a new one. It does nothing when the default
// logger was set with SetDefault.
func ShutdownDefault(now bool) error {
	defaultMu.Lock()
	old := defaultLogging
	if old != nil {
		defaultLogger = nil
		defaultLogging = nil
	}
	defaultMu.Unlock()
	if old == nil {
		return nil
	}
	return old.Shutdown(now)
}

// Package-level convenience functions using the default logger

// Trace logs a trace message using the default logger
func Trace(msg string) { Default().Trace(msg) }

// Debug logs a debug message using the default logger
func Debug(msg string) { Default().Debug(msg) }

// Info logs an info message using the default logger
func Info(msg string) { Default().Info(msg) }

// Success logs a success message using the default logger
func Success(msg string) { Default().Success(msg) }

// Warning logs a warning message using the default logger
func Warning(msg string) { Default().Warning(msg) }

// Error logs an error message using the default logger
func Error(msg string) { Default().Error(msg) }

// Critical logs a critical message using the default logger
func Critical(msg string) { Default().Critical(msg) }

// Fatal logs at CRITICAL using the default logger. It does not exit.
func Fatal(msg string) { Default().Fatal(msg) }

// Exception logs an exception message using the default logger
func Exception(msg string) { Default().Exception(msg) }

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...any) { Default().Debugf(format, args...) }

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...any) { Default().Infof(format, args...) }

// Warningf logs a formatted warning message using the default logger
func Warningf(format string, args ...any) { Default().Warningf(format, args...) }

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...any) { Default().Errorf(format, args...) }
