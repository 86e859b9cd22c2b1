package benchmark

import (
	"io"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/logger"
	"github.com/philipp01105/fastlogging/logging"
	"github.com/philipp01105/fastlogging/writer/consolewriter"
)

// newFastLogger returns a logger whose coordinator writes to io.Discard.
// With async set the console writer formats on its own goroutine.
func newFastLogger(b *testing.B, async bool) (*logger.Logger, *logging.Logging) {
	b.Helper()
	l, err := logging.New(logging.Config{
		Level: core.DebugLevel,
		Writers: []logging.WriterConfig{{Console: &consolewriter.Config{
			Level:  core.DebugLevel,
			Target: consolewriter.TargetStdout,
			Async:  async,
			Stdout: io.Discard,
		}}},
	})
	if err != nil {
		b.Fatal(err)
	}
	return logger.NewBuilder().WithLogging(l).Build(), l
}

func newZapLogger() *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.DebugLevel)
	return zap.New(core)
}

func newSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newLogrusLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	l.SetLevel(logrus.DebugLevel)
	return l
}

func newZerologLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: io.Discard, NoColor: true}).
		With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

func BenchmarkCompetitive_Info(b *testing.B) {
	for _, async := range []bool{false, true} {
		name := "fastlogging/sync"
		if async {
			name = "fastlogging/async"
		}
		b.Run(name, func(b *testing.B) {
			log, l := newFastLogger(b, async)
			defer l.Shutdown(true)
			b.ReportAllocs()
			for b.Loop() {
				log.Info("info message")
			}
		})
	}

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ReportAllocs()
		for b.Loop() {
			l.Info("info message")
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ReportAllocs()
		for b.Loop() {
			l.Info("info message")
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ReportAllocs()
		for b.Loop() {
			l.Info("info message")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ReportAllocs()
		for b.Loop() {
			l.Info().Msg("info message")
		}
	})
}

// BenchmarkCompetitive_Filtered measures a call below the active level.
func BenchmarkCompetitive_Filtered(b *testing.B) {
	b.Run("fastlogging", func(b *testing.B) {
		log, l := newFastLogger(b, false)
		defer l.Shutdown(true)
		if err := l.SetLevel(core.ErrorLevel); err != nil {
			b.Fatal(err)
		}
		b.ReportAllocs()
		for b.Loop() {
			log.Debug("filtered")
		}
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger().WithOptions(zap.IncreaseLevel(zap.ErrorLevel))
		b.ReportAllocs()
		for b.Loop() {
			l.Debug("filtered")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger().Level(zerolog.ErrorLevel)
		b.ReportAllocs()
		for b.Loop() {
			l.Debug().Msg("filtered")
		}
	})
}

func BenchmarkCompetitive_Formatted(b *testing.B) {
	b.Run("fastlogging", func(b *testing.B) {
		log, l := newFastLogger(b, true)
		defer l.Shutdown(true)
		b.ReportAllocs()
		for b.Loop() {
			log.Infof("user %s logged in after %d attempts", "alice", 3)
		}
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger().Sugar()
		b.ReportAllocs()
		for b.Loop() {
			l.Infof("user %s logged in after %d attempts", "alice", 3)
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ReportAllocs()
		for b.Loop() {
			l.Infof("user %s logged in after %d attempts", "alice", 3)
		}
	})
}

func BenchmarkCompetitive_Parallel(b *testing.B) {
	b.Run("fastlogging", func(b *testing.B) {
		log, l := newFastLogger(b, true)
		defer l.Shutdown(true)
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				log.Info("parallel message")
			}
		})
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel message")
			}
		})
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info().Msg("parallel message")
			}
		})
	})
}
