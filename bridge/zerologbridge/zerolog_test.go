package zerologbridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
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

func TestWriter_Events(t *testing.T) {
	e := &fakeEmitter{}
	log := zerolog.New(NewWriter(e, "worker")).With().Timestamp().Logger()

	log.Error().Err(errors.New("disk full")).Int("job", 7).Msg("job failed")
	log.Debug().Str("step", "two words").Msg("progress")

	require.Len(t, e.recs, 2)
	assert.Equal(t, emitted{core.ErrorLevel, "worker", "job failed error=\"disk full\" job=7"}, e.recs[0])
	assert.Equal(t, emitted{core.DebugLevel, "worker", `progress step="two words"`}, e.recs[1])
}

func TestWriter_PlainWrite(t *testing.T) {
	e := &fakeEmitter{}
	w := NewWriter(e, "")

	n, err := w.Write([]byte(`{"level":"warn","message":"hot"}`))
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	require.Len(t, e.recs, 1)
	assert.Equal(t, core.WarningLevel, e.recs[0].level)

	_, err = w.Write([]byte("not json"))
	assert.ErrorIs(t, err, core.ErrProtocol)
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, core.InfoLevel, LevelOf(zerolog.NoLevel))
	assert.Equal(t, core.ExceptionLevel, LevelOf(zerolog.PanicLevel))
	assert.Equal(t, core.TraceLevel, LevelOf(zerolog.TraceLevel))
}
