package logging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
	"github.com/philipp01105/fastlogging/writer"
	"github.com/philipp01105/fastlogging/writer/callbackwriter"
	"github.com/philipp01105/fastlogging/writer/filewriter"
)

// Logging owns a set of writers and routes records to them.
//
// A record is built once per event and handed to every writer that
// accepts its level. Writers are keyed by core.WriterKey; at most one
// writer per key exists.
type Logging struct {
	mu      sync.RWMutex
	writers map[core.WriterKey]writer.Writer
	order   []core.WriterKey

	level    atomic.Uint32
	minLevel atomic.Uint32 // fast path, see updateMinLocked
	domain   atomic.Pointer[string]
	ext      atomic.Pointer[core.ExtConfig]
	syms     atomic.Uint32

	drainTimeout time.Duration
	diag         *zap.Logger
	closed       atomic.Bool
}

// New creates a Logging instance with the writers described by cfg. When
// a writer cannot be created, the ones created before are closed and the
// error is returned.
func New(cfg Config) (*Logging, error) {
	applyLoggingDefaults(&cfg)

	l := &Logging{
		writers:      make(map[core.WriterKey]writer.Writer),
		drainTimeout: cfg.DrainTimeout,
		diag:         cfg.Diagnostics,
	}
	l.level.Store(uint32(cfg.Level))
	l.domain.Store(&cfg.Domain)
	ext := cfg.Ext
	l.ext.Store(&ext)
	l.syms.Store(uint32(cfg.LevelSyms))
	l.minLevel.Store(uint32(core.NoLogLevel))

	for _, wc := range cfg.Writers {
		w, err := wc.build(l.writerOptions()...)
		if err == nil {
			err = l.AddWriter(w)
			if err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			_ = l.Shutdown(true)
			return nil, err
		}
	}
	return l, nil
}

func (l *Logging) writerOptions() []writer.Option {
	return []writer.Option{writer.WithDiagnostics(l.diag), writer.WithDispatcher(l)}
}

// fast reports whether a record of the given level can reach any writer
func (l *Logging) fast(level core.Level) bool {
	m := core.Level(l.minLevel.Load())
	return m != core.NoLogLevel && level >= m
}

// updateMinLocked recomputes the fast path level: the global level, raised
// to the lowest level any enabled writer accepts. With no such writer it
// is NoLogLevel.
func (l *Logging) updateMinLocked() {
	lowest := core.NoLogLevel
	for _, w := range l.writers {
		if w.Enabled() && w.Level() != core.NoLogLevel && w.Level() < lowest {
			lowest = w.Level()
		}
	}
	global := core.Level(l.level.Load())
	if global == core.NoLogLevel {
		lowest = core.NoLogLevel
	}
	l.minLevel.Store(uint32(max(global, lowest)))
}

func (l *Logging) updateMin() {
	l.mu.Lock()
	l.updateMinLocked()
	l.mu.Unlock()
}

// Emit builds a record and routes it. An empty domain means the domain of
// l; thread names the emitting handle. Emit never blocks on I/O and does
// nothing after Shutdown.
func (l *Logging) Emit(level core.Level, domain, message, thread string) {
	if !l.fast(level) || l.closed.Load() {
		return
	}
	if domain == "" {
		domain = *l.domain.Load()
	}
	rec := core.NewRecord(level, domain, message, thread, l.ext.Load(), core.LevelSyms(l.syms.Load()))
	l.route(rec)
}

// Dispatch routes a record received from a remote peer. It is rendered
// with the structuring mode and level symbols of l and filtered by every
// writer's level; the global level does not apply.
func (l *Logging) Dispatch(rec *core.Record) {
	if l.closed.Load() {
		return
	}
	l.route(rec.Restyle(l.ext.Load().Structured, core.LevelSyms(l.syms.Load())))
}

func (l *Logging) route(rec *core.Record) {
	l.mu.RLock()
	for _, key := range l.order {
		w := l.writers[key]
		if writer.Accepts(w, rec.Level) {
			w.Enqueue(rec)
		}
	}
	l.mu.RUnlock()
}

// Log emits message at level in the domain of l
func (l *Logging) Log(level core.Level, message string) {
	l.Emit(level, "", message, "")
}

func (l *Logging) Trace(message string)     { l.Log(core.TraceLevel, message) }
func (l *Logging) Debug(message string)     { l.Log(core.DebugLevel, message) }
func (l *Logging) Info(message string)      { l.Log(core.InfoLevel, message) }
func (l *Logging) Success(message string)   { l.Log(core.SuccessLevel, message) }
func (l *Logging) Warning(message string)   { l.Log(core.WarningLevel, message) }
func (l *Logging) Error(message string)     { l.Log(core.ErrorLevel, message) }
func (l *Logging) Critical(message string)  { l.Log(core.CriticalLevel, message) }
func (l *Logging) Fatal(message string)     { l.Log(core.FatalLevel, message) }
func (l *Logging) Exception(message string) { l.Log(core.ExceptionLevel, message) }

// Level returns the global level
func (l *Logging) Level() core.Level {
	return core.Level(l.level.Load())
}

// SetLevel changes the global level
func (l *Logging) SetLevel(level core.Level) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.level.Store(uint32(level))
	l.updateMin()
	return nil
}

// Domain returns the default domain of emitted records
func (l *Logging) Domain() string {
	return *l.domain.Load()
}

// SetDomain changes the default domain of records emitted afterwards
func (l *Logging) SetDomain(domain string) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.domain.Store(&domain)
	return nil
}

// LevelSyms returns how levels are rendered
func (l *Logging) LevelSyms() core.LevelSyms {
	return core.LevelSyms(l.syms.Load())
}

// SetLevelSyms changes how levels of records built afterwards are rendered
func (l *Logging) SetLevelSyms(syms core.LevelSyms) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.syms.Store(uint32(syms))
	return nil
}

// ExtConfig returns a copy of the current enrichment settings
func (l *Logging) ExtConfig() core.ExtConfig {
	return *l.ext.Load()
}

// SetExtConfig replaces the enrichment settings. Records built before the
// call keep the settings they were built with.
func (l *Logging) SetExtConfig(ext core.ExtConfig) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.ext.Store(&ext)
	return nil
}

// AddWriter adds w. It fails with core.ErrWriterExists when a writer with
// the same key is present; replacing a writer means removing it first.
func (l *Logging) AddWriter(w writer.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed.Load() {
		return core.ErrClosed
	}
	key := w.Key()
	if _, ok := l.writers[key]; ok {
		return fmt.Errorf("%w: %s", core.ErrWriterExists, key)
	}
	l.writers[key] = w
	l.order = append(l.order, key)
	l.updateMinLocked()
	l.diag.Debug("writer added", zap.Stringer("writer", key))
	return nil
}

// AddWriterConfig creates the writer described by wc and adds it
func (l *Logging) AddWriterConfig(wc WriterConfig) (writer.Writer, error) {
	if l.closed.Load() {
		return nil, core.ErrClosed
	}
	w, err := wc.build(l.writerOptions()...)
	if err != nil {
		return nil, err
	}
	if err := l.AddWriter(w); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// AddCallback creates a callback writer calling fn and adds it
func (l *Logging) AddCallback(level core.Level, fn callbackwriter.Func) (writer.Writer, error) {
	if l.closed.Load() {
		return nil, core.ErrClosed
	}
	w, err := callbackwriter.New(callbackwriter.Config{Level: level}, fn, l.writerOptions()...)
	if err != nil {
		return nil, err
	}
	if err := l.AddWriter(w); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// RemoveWriter removes the writer with the given key and closes it.
// Closing drains its queue for at most its drain timeout.
func (l *Logging) RemoveWriter(key core.WriterKey) error {
	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		return core.ErrClosed
	}
	w, ok := l.writers[key]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrWriterNotFound, key)
	}
	delete(l.writers, key)
	l.order = slices.DeleteFunc(l.order, func(k core.WriterKey) bool { return k == key })
	l.updateMinLocked()
	l.mu.Unlock()

	l.diag.Debug("writer removed", zap.Stringer("writer", key))
	// Closed outside the lock: a server writer waits for its connections,
	// which may be routing records under the read lock.
	return w.Close()
}

// Writer returns the writer with the given key
func (l *Logging) Writer(key core.WriterKey) (writer.Writer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w, ok := l.writers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrWriterNotFound, key)
	}
	return w, nil
}

// Writers returns the writers in the order they were added
func (l *Logging) Writers() []writer.Writer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Logging) snapshotLocked(kinds ...core.WriterKind) []writer.Writer {
	out := make([]writer.Writer, 0, len(l.order))
	for _, key := range l.order {
		if len(kinds) == 0 || slices.Contains(kinds, key.Kind) {
			out = append(out, l.writers[key])
		}
	}
	return out
}

// SetWriterLevel changes the level of one writer. Writer levels should be
// changed here rather than on the writer so the fast path stays current.
func (l *Logging) SetWriterLevel(key core.WriterKey, level core.Level) error {
	return l.modify(key, func(w writer.Writer) { w.SetLevel(level) })
}

// Enable enables the writer with the given key
func (l *Logging) Enable(key core.WriterKey) error {
	return l.modify(key, func(w writer.Writer) { w.SetEnabled(true) })
}

// Disable disables the writer with the given key. It stays registered but
// receives nothing.
func (l *Logging) Disable(key core.WriterKey) error {
	return l.modify(key, func(w writer.Writer) { w.SetEnabled(false) })
}

func (l *Logging) modify(key core.WriterKey, fn func(w writer.Writer)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed.Load() {
		return core.ErrClosed
	}
	w, ok := l.writers[key]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrWriterNotFound, key)
	}
	fn(w)
	l.updateMinLocked()
	return nil
}

// EnableKind enables all writers of a kind
func (l *Logging) EnableKind(kind core.WriterKind) error {
	return l.setKindEnabled(kind, true)
}

// DisableKind disables all writers of a kind
func (l *Logging) DisableKind(kind core.WriterKind) error {
	return l.setKindEnabled(kind, false)
}

func (l *Logging) setKindEnabled(kind core.WriterKind, enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed.Load() {
		return core.ErrClosed
	}
	for _, w := range l.snapshotLocked(kind) {
		w.SetEnabled(enabled)
	}
	l.updateMinLocked()
	return nil
}

// Sync waits until the writers of the given kinds (all writers when none
// are given) have written everything emitted before the call. It returns
// an error wrapping core.ErrTimeout when that does not happen within
// timeout, and the I/O errors writers saw since their last flush.
func (l *Logging) Sync(timeout time.Duration, kinds ...core.WriterKind) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.mu.RLock()
	ws := l.snapshotLocked(kinds...)
	l.mu.RUnlock()
	return flushAll(ws, timeout)
}

// SyncAll is Sync for every writer
func (l *Logging) SyncAll(timeout time.Duration) error {
	return l.Sync(timeout)
}

func flushAll(ws []writer.Writer, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	errs := make([]error, len(ws))
	var wg sync.WaitGroup
	for i, w := range ws {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Flush(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: %s: %w", core.ErrTimeout, w.Key(), err)
				} else {
					err = fmt.Errorf("%s: %w", w.Key(), err)
				}
				errs[i] = err
			}
		}()
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

// Rotate rotates the file writer writing to path, or every file writer
// when path is empty.
func (l *Logging) Rotate(path string) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	l.mu.RLock()
	ws := l.snapshotLocked(core.KindFile)
	l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), l.drainTimeout)
	defer cancel()

	var err error
	found := false
	for _, w := range ws {
		fw, ok := w.(*filewriter.Writer)
		if !ok || (path != "" && fw.Path() != path) {
			continue
		}
		found = true
		err = multierr.Append(err, fw.Rotate(ctx))
	}
	if !found {
		if path == "" {
			return fmt.Errorf("%w: no file writer", core.ErrWriterNotFound)
		}
		return fmt.Errorf("%w: no file writer for %s", core.ErrWriterNotFound, path)
	}
	return err
}

// SetEncryption changes the encryption of a client or server writer. The
// next record is sent with the new settings.
func (l *Logging) SetEncryption(key core.WriterKey, enc netproto.Encryption) error {
	w, err := l.Writer(key)
	if err != nil {
		return err
	}
	if l.closed.Load() {
		return core.ErrClosed
	}
	e, ok := w.(writer.Encrypter)
	if !ok {
		return fmt.Errorf("%w: %s has no encryption", core.ErrUnsupported, key)
	}
	return e.SetEncryption(enc)
}

// ServerAddresses returns the addresses server writers listen on, keyed by
// their configured address. With port 0 the actual port is only known here.
func (l *Logging) ServerAddresses() map[string]net.Addr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]net.Addr)
	for _, w := range l.snapshotLocked(core.KindServer) {
		if a, ok := w.(writer.Addresser); ok {
			out[w.Key().Address] = a.Addr()
		}
	}
	return out
}

// Shutdown closes all writers. With now false the writers are synced
// first, bounded by the drain timeout; with now true queued records are
// discarded. Afterwards every operation fails with core.ErrClosed and
// emitting does nothing.
func (l *Logging) Shutdown(now bool) error {
	l.mu.Lock()
	if l.closed.Swap(true) {
		l.mu.Unlock()
		return core.ErrClosed
	}
	ws := l.snapshotLocked()
	l.writers = make(map[core.WriterKey]writer.Writer)
	l.order = nil
	l.minLevel.Store(uint32(core.NoLogLevel))
	l.mu.Unlock()

	// Servers are closed first so that nothing arrives while the rest drains.
	var err error
	rest := ws[:0:0]
	for _, w := range ws {
		if w.Key().Kind == core.KindServer {
			err = multierr.Append(err, w.Close())
		} else {
			rest = append(rest, w)
		}
	}
	if now {
		for _, w := range rest {
			w.Discard()
		}
	} else {
		err = multierr.Append(err, flushAll(rest, l.drainTimeout))
	}
	for _, w := range rest {
		err = multierr.Append(err, w.Close())
	}
	if err != nil {
		l.diag.Warn("shutdown incomplete", zap.Error(err))
	}
	return err
}
