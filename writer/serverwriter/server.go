package serverwriter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
	"github.com/philipp01105/fastlogging/writer"
)

// DefaultMaxClientErrors is the number of failed handshakes after which a
// remote host is refused
const DefaultMaxClientErrors = 3

// Config holds configuration for the server writer
type Config struct {
	// Level filters records received from clients
	Level core.Level `yaml:"level" json:"level" xml:"level"`
	// Address to listen on. Port 0 picks a free port; see Addr.
	Address    string                    `yaml:"address" json:"address" xml:"address"`
	Encryption netproto.EncryptionMethod `yaml:"encryption" json:"encryption" xml:"encryption"`
	// Key is the shared secret. It is never written to configuration files.
	Key []byte `yaml:"-" json:"-" xml:"-"`
	// HandshakeTimeout bounds the handshake of a new connection (default: 5s)
	HandshakeTimeout time.Duration `yaml:"handshake_timeout,omitempty" json:"handshake_timeout,omitempty" xml:"handshake_timeout,omitempty"`
	// MaxClientErrors is the number of failed handshakes from one host
	// before it is refused (default: 3)
	MaxClientErrors int `yaml:"max_client_errors,omitempty" json:"max_client_errors,omitempty" xml:"max_client_errors,omitempty"`
}

func applyServerDefaults(cfg *Config) {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.MaxClientErrors <= 0 {
		cfg.MaxClientErrors = DefaultMaxClientErrors
	}
}

// Writer accepts client writers and hands every record they send to the
// dispatcher. It has no queue of its own: Enqueue, Flush and Discard do
// nothing.
type Writer struct {
	writer.Base
	cfg        Config
	diag       *zap.Logger
	dispatcher writer.Dispatcher
	ln         net.Listener

	mu      sync.Mutex
	enc     netproto.Encryption
	conns   map[net.Conn]uuid.UUID
	buggy   map[string]int
	closing bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New binds the listening socket and starts accepting clients. Records
// are handed to the dispatcher given with writer.WithDispatcher.
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	enc := netproto.Encryption{Method: cfg.Encryption, Key: cfg.Key}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	o := writer.NewOptions(opts...)
	if o.Dispatcher == nil {
		return nil, fmt.Errorf("%w: server writer needs a dispatcher", core.ErrConfiguration)
	}
	applyServerDefaults(&cfg)

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %w", core.ErrConfiguration, cfg.Address, err)
	}

	w := &Writer{
		cfg:        cfg,
		diag:       o.Diagnostics.With(zap.String("writer", "server"), zap.Stringer("address", ln.Addr())),
		dispatcher: o.Dispatcher,
		ln:         ln,
		enc:        enc,
		conns:      make(map[net.Conn]uuid.UUID),
		buggy:      make(map[string]int),
	}
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindServer, Address: cfg.Address}, cfg.Level)

	w.wg.Add(1)
	go w.acceptLoop()
	return w, nil
}

// Addr returns the bound address
func (w *Writer) Addr() net.Addr {
	return w.ln.Addr()
}

// Config returns the current configuration including the key
func (w *Writer) Config() Config {
	cfg := w.cfg
	cfg.Level = w.Level()
	w.mu.Lock()
	cfg.Encryption = w.enc.Method
	cfg.Key = w.enc.Key
	w.mu.Unlock()
	return cfg
}

// Clients returns the ids of the connected clients
func (w *Writer) Clients() []uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(w.conns))
	for _, id := range w.conns {
		if id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetEncryption replaces the method and key. Established sessions were
// negotiated with the old credentials and are closed; clients reconnect.
func (w *Writer) SetEncryption(enc netproto.Encryption) error {
	if err := enc.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.enc = enc
	for c := range w.conns {
		_ = c.Close()
	}
	w.mu.Unlock()
	return nil
}

func (w *Writer) acceptLoop() {
	defer w.wg.Done()
	for {
		c, err := w.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			w.Counters().RecordError(err)
			w.diag.Warn("accept failed", zap.Error(err))
			time.Sleep(10 * time.Millisecond)
			continue
		}

		host := remoteHost(c)
		w.mu.Lock()
		if w.closing {
			w.mu.Unlock()
			_ = c.Close()
			return
		}
		if w.buggy[host] >= w.cfg.MaxClientErrors {
			w.mu.Unlock()
			w.diag.Debug("refusing client", zap.String("remote", host))
			_ = c.Close()
			continue
		}
		w.conns[c] = uuid.Nil
		enc := w.enc
		w.mu.Unlock()

		w.wg.Add(1)
		go w.serve(c, host, enc)
	}
}

func remoteHost(c net.Conn) string {
	host, _, err := net.SplitHostPort(c.RemoteAddr().String())
	if err != nil {
		return c.RemoteAddr().String()
	}
	return host
}

// serve runs one client connection until it closes
func (w *Writer) serve(c net.Conn, host string, enc netproto.Encryption) {
	defer w.wg.Done()
	defer func() {
		w.mu.Lock()
		delete(w.conns, c)
		w.mu.Unlock()
		_ = c.Close()
	}()

	_ = c.SetDeadline(time.Now().Add(w.cfg.HandshakeTimeout))
	session, err := netproto.ServerHandshake(c, enc)
	if err != nil {
		if errors.Is(err, core.ErrProtocol) {
			w.mu.Lock()
			w.buggy[host]++
			w.mu.Unlock()
		}
		w.Counters().RecordError(err)
		w.diag.Warn("handshake failed", zap.String("remote", c.RemoteAddr().String()), zap.Error(err))
		return
	}
	_ = c.SetDeadline(time.Time{})

	w.mu.Lock()
	if _, ok := w.conns[c]; !ok {
		// closed by SetEncryption or Close during the handshake
		w.mu.Unlock()
		return
	}
	w.conns[c] = session.Peer()
	delete(w.buggy, host)
	w.mu.Unlock()
	w.Counters().IncrementReconnects()

	log := w.diag.With(zap.Stringer("client_id", session.Peer()))
	log.Info("client connected")

	r := bufio.NewReaderSize(c, 32*1024)
	for {
		typ, payload, err := session.ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Info("client disconnected")
			} else {
				w.Counters().RecordError(err)
				log.Warn("dropping client", zap.Error(err))
			}
			return
		}
		if typ != netproto.FrameRecord {
			continue
		}
		rec, err := netproto.DecodeRecord(payload)
		if err != nil {
			w.Counters().RecordError(err)
			log.Warn("dropping client", zap.Error(err))
			return
		}
		if !writer.Accepts(w, rec.Level) {
			continue
		}
		w.Counters().IncrementProcessed()
		w.dispatcher.Dispatch(rec)
	}
}

// Enqueue implements writer.Writer. Server writers only receive.
func (w *Writer) Enqueue(*core.Record) {}

// Flush implements writer.Writer
func (w *Writer) Flush(context.Context) error {
	return w.Counters().TakeError()
}

// Discard implements writer.Writer
func (w *Writer) Discard() {}

// Close stops listening, disconnects all clients and waits for their
// goroutines to end.
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closing = true
		err = w.ln.Close()
		for c := range w.conns {
			_ = c.Close()
		}
		w.mu.Unlock()
		w.wg.Wait()
	})
	return err
}
