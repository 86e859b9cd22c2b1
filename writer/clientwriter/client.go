package clientwriter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
	"github.com/philipp01105/fastlogging/writer"
)

// Config holds configuration for the client writer
type Config struct {
	Level core.Level `yaml:"level" json:"level" xml:"level"`
	// Address is the host:port of the server writer
	Address    string                    `yaml:"address" json:"address" xml:"address"`
	Encryption netproto.EncryptionMethod `yaml:"encryption" json:"encryption" xml:"encryption"`
	// Key is the shared secret. It is never written to configuration files.
	Key []byte `yaml:"-" json:"-" xml:"-"`
	// BufferSize is the size of the queue (default: 1000)
	BufferSize int `yaml:"buffer_size,omitempty" json:"buffer_size,omitempty" xml:"buffer_size,omitempty"`
	// KeepAlive is the interval of ping frames on an idle link (default: 5s)
	KeepAlive time.Duration `yaml:"keep_alive,omitempty" json:"keep_alive,omitempty" xml:"keep_alive,omitempty"`
	// DialTimeout bounds connecting, the handshake and each write (default: 5s)
	DialTimeout time.Duration `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty" xml:"dial_timeout,omitempty"`
	// MaxBackoff caps the delay between reconnect attempts (default: 5s)
	MaxBackoff time.Duration `yaml:"max_backoff,omitempty" json:"max_backoff,omitempty" xml:"max_backoff,omitempty"`
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty" json:"drain_timeout,omitempty" xml:"drain_timeout,omitempty"`
}

// applyClientDefaults fills in zero-value fields with defaults.
func applyClientDefaults(cfg *Config) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 5 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
}

// conn is an established, authenticated link
type conn struct {
	raw     net.Conn
	bw      *bufio.Writer
	session *netproto.Session
	dead    chan struct{} // closed when the peer hangs up
}

func (c *conn) close() {
	_ = c.raw.Close()
}

// Writer forwards records to a server writer. Connecting happens in the
// background; while the link is down records wait in the queue, and the
// oldest are dropped once it is full.
type Writer struct {
	writer.Base
	cfg  Config
	id   uuid.UUID
	diag *zap.Logger

	encMu sync.Mutex
	enc   netproto.Encryption
	rekey chan struct{}

	queue     *writer.Queue
	encoded   []byte
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a client writer. The address and the encryption settings are
// validated here; the connection is made asynchronously.
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return nil, fmt.Errorf("%w: client address: %w", core.ErrConfiguration, err)
	}
	enc := netproto.Encryption{Method: cfg.Encryption, Key: cfg.Key}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	applyClientDefaults(&cfg)
	o := writer.NewOptions(opts...)

	w := &Writer{
		cfg:    cfg,
		id:     uuid.New(),
		enc:    enc,
		rekey:  make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	w.diag = o.Diagnostics.With(zap.String("writer", "client"), zap.String("address", cfg.Address), zap.Stringer("client_id", w.id))
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindClient, Address: cfg.Address}, cfg.Level)
	w.queue = writer.NewQueue(cfg.BufferSize, w.Counters())

	w.wg.Add(1)
	go w.process()
	return w, nil
}

// Config returns the current configuration including the key
func (w *Writer) Config() Config {
	cfg := w.cfg
	cfg.Level = w.Level()
	enc := w.encryption()
	cfg.Encryption = enc.Method
	cfg.Key = enc.Key
	return cfg
}

// ID returns the client id announced to servers
func (w *Writer) ID() uuid.UUID {
	return w.id
}

// Enqueue implements writer.Writer
func (w *Writer) Enqueue(rec *core.Record) {
	w.queue.Push(rec)
}

// SetEncryption replaces the method and key. The current link is dropped
// and the next record is sent over a link negotiated with enc.
func (w *Writer) SetEncryption(enc netproto.Encryption) error {
	if err := enc.Validate(); err != nil {
		return err
	}
	w.encMu.Lock()
	w.enc = enc
	w.encMu.Unlock()
	select {
	case w.rekey <- struct{}{}:
	default:
	}
	return nil
}

func (w *Writer) encryption() netproto.Encryption {
	w.encMu.Lock()
	defer w.encMu.Unlock()
	return w.enc
}

// connect dials the server and performs the handshake
func (w *Writer) connect() (*conn, error) {
	raw, err := net.DialTimeout("tcp", w.cfg.Address, w.cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	_ = raw.SetDeadline(time.Now().Add(w.cfg.DialTimeout))
	session, err := netproto.ClientHandshake(raw, w.encryption(), w.id)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	_ = raw.SetDeadline(time.Time{})

	c := &conn{
		raw:     raw,
		bw:      bufio.NewWriterSize(raw, 32*1024),
		session: session,
		dead:    make(chan struct{}),
	}
	// The server never writes after the handshake; a read returning
	// means the link is gone.
	go func() {
		_, _ = io.Copy(io.Discard, raw)
		close(c.dead)
	}()
	return c, nil
}

// process owns the connection. It takes records only while connected.
func (w *Writer) process() {
	defer w.wg.Done()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = w.cfg.MaxBackoff
	bo.MaxElapsedTime = 0

	ping := time.NewTicker(w.cfg.KeepAlive)
	defer ping.Stop()

	var c *conn
	defer func() {
		if c != nil {
			c.close()
		}
	}()

	for {
		if c == nil {
			var err error
			if c, err = w.connect(); err != nil {
				// A server that cannot be reached is not a record failure,
				// a rejected handshake is.
				c = nil
				if errors.Is(err, core.ErrProtocol) {
					w.Counters().RecordError(err)
				}
				delay := bo.NextBackOff()
				w.diag.Debug("connect failed", zap.Error(err), zap.Duration("retry_in", delay))
				select {
				case <-time.After(delay):
					continue
				case <-w.rekey:
					continue
				case <-w.closed:
					return
				}
			}
			bo.Reset()
			w.Counters().IncrementReconnects()
			w.diag.Info("connected")
			if !w.sendPending(c) {
				c.close()
				c = nil
				continue
			}
		}

		// A dropped link or a new key wins over pending records.
		ok := true
		select {
		case <-c.dead:
			ok = false
		case <-w.rekey:
			ok = false
		default:
		}
		if !ok {
			c.close()
			c = nil
			continue
		}

		select {
		case <-w.queue.Notify():
			ok = w.sendPending(c)
		case <-ping.C:
			ok = w.send(c, netproto.FramePing, nil) == nil
		case <-c.dead:
			w.diag.Info("server closed the connection")
			ok = false
		case <-w.rekey:
			w.diag.Info("encryption changed, reconnecting")
			ok = false
		case <-w.closed:
			w.drain(c)
			return
		}
		if !ok {
			c.close()
			c = nil
		}
	}
}

// drain sends what is queued until the drain timeout
func (w *Writer) drain(c *conn) {
	deadline := time.After(w.cfg.DrainTimeout)
	for w.queue.Len() > 0 {
		select {
		case <-deadline:
			return
		default:
		}
		if !w.sendPending(c) {
			return
		}
	}
}

// sendPending sends everything queued. On failure the batch in flight is
// put back and false is returned; those records may be delivered twice.
func (w *Writer) sendPending(c *conn) bool {
	for {
		batch := w.queue.Take(writer.DefaultBatchSize)
		if len(batch) == 0 {
			return true
		}
		sent := 0
		for _, rec := range batch {
			var err error
			w.encoded, err = netproto.AppendRecord(w.encoded[:0], rec)
			if err != nil {
				// Cannot ever be sent; drop it instead of retrying.
				w.Counters().RecordError(err)
				w.Counters().AddDropped(1)
				continue
			}
			if err := w.send(c, netproto.FrameRecord, w.encoded); err != nil {
				w.queue.Requeue()
				return false
			}
			sent++
		}
		if err := w.flush(c); err != nil {
			w.queue.Requeue()
			return false
		}
		w.queue.Done()
		w.Counters().AddProcessed(sent)
	}
}

func (w *Writer) send(c *conn, typ netproto.FrameType, payload []byte) error {
	_ = c.raw.SetWriteDeadline(time.Now().Add(w.cfg.DialTimeout))
	if err := c.session.WriteFrame(c.bw, typ, payload); err != nil {
		w.linkError(err)
		return err
	}
	if typ == netproto.FramePing {
		return w.flush(c)
	}
	return nil
}

func (w *Writer) flush(c *conn) error {
	if err := c.bw.Flush(); err != nil {
		w.linkError(err)
		return err
	}
	return nil
}

func (w *Writer) linkError(err error) {
	if errors.Is(err, net.ErrClosed) {
		return
	}
	w.Counters().RecordError(err)
	w.diag.Warn("send failed", zap.Error(err))
}

// Flush implements writer.Writer. It waits for the server to have been
// sent everything queued before the call. When ctx ends first, the errors
// that kept the records queued are returned with ctx.Err().
func (w *Writer) Flush(ctx context.Context) error {
	if err := w.queue.Flush(ctx); err != nil {
		return multierr.Append(err, w.Counters().TakeError())
	}
	return w.Counters().TakeError()
}

// Discard implements writer.Writer
func (w *Writer) Discard() {
	w.queue.Discard()
}

// Close sends what is queued for at most the drain timeout, then closes
// the connection.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
		w.wg.Wait()
		w.queue.Close()
		w.queue.Discard()
	})
	return nil
}
