package writer

import (
	"sync/atomic"

	"github.com/philipp01105/fastlogging/core"
)

// Base holds the state every writer shares: identity, level, the enabled
// flag and the counters. Writers embed it.
type Base struct {
	key     core.WriterKey
	level   atomic.Uint32
	enabled atomic.Bool
	stats   *Stats
}

// InitBase initializes b in place
func InitBase(b *Base, key core.WriterKey, level core.Level) {
	b.key = key
	b.level.Store(uint32(level))
	b.enabled.Store(true)
	b.stats = NewStats()
}

// Key implements Writer
func (b *Base) Key() core.WriterKey { return b.key }

// Level implements Writer
func (b *Base) Level() core.Level { return core.Level(b.level.Load()) }

// SetLevel implements Writer
func (b *Base) SetLevel(level core.Level) { b.level.Store(uint32(level)) }

// Enabled implements Writer
func (b *Base) Enabled() bool { return b.enabled.Load() }

// SetEnabled implements Writer
func (b *Base) SetEnabled(enabled bool) { b.enabled.Store(enabled) }

// Counters returns the live counters
func (b *Base) Counters() *Stats { return b.stats }

// Stats implements Writer
func (b *Base) Stats() Snapshot { return b.stats.GetSnapshot() }
