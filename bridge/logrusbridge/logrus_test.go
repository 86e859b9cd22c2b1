package logrusbridge

import (
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/fastlogging/core"
)

type emitted struct {
	level   core.Level
	domain  string
	message string
}

type fakeEmitter struct {
	mu   sync.Mutex
	recs []emitted
}

func (f *fakeEmitter) Emit(level core.Level, domain, message, _ string) {
	f.mu.Lock()
	f.recs = append(f.recs, emitted{level, domain, message})
	f.mu.Unlock()
}

func TestHook_Fire(t *testing.T) {
	e := &fakeEmitter{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.TraceLevel)
	log.AddHook(NewHook(e, "legacy"))

	log.WithFields(logrus.Fields{"user": "bob", "attempt": 3}).Warn("login failed")
	log.Trace("details")

	require.Len(t, e.recs, 2)
	assert.Equal(t, emitted{core.WarningLevel, "legacy", "login failed attempt=3 user=bob"}, e.recs[0])
	assert.Equal(t, core.TraceLevel, e.recs[1].level)
}

func TestHook_Levels(t *testing.T) {
	e := &fakeEmitter{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(NewHook(e, "", logrus.ErrorLevel))

	log.Info("ignored")
	log.Error("kept")

	require.Len(t, e.recs, 1)
	assert.Equal(t, "kept", e.recs[0].message)
}

func TestLevelOf(t *testing.T) {
	tests := map[logrus.Level]core.Level{
		logrus.PanicLevel: core.ExceptionLevel,
		logrus.FatalLevel: core.CriticalLevel,
		logrus.ErrorLevel: core.ErrorLevel,
		logrus.WarnLevel:  core.WarningLevel,
		logrus.InfoLevel:  core.InfoLevel,
		logrus.DebugLevel: core.DebugLevel,
		logrus.TraceLevel: core.TraceLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelOf(in), in.String())
	}
}
