package serverwriter_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
	"github.com/philipp01105/fastlogging/writer"
	"github.com/philipp01105/fastlogging/writer/clientwriter"
	"github.com/philipp01105/fastlogging/writer/serverwriter"
)

// sink collects dispatched records
type sink struct {
	mu   sync.Mutex
	recs []*core.Record
}

func (s *sink) Dispatch(rec *core.Record) {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
}

func (s *sink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.recs))
	for i, r := range s.recs {
		out[i] = r.Message
	}
	return out
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func newServer(t *testing.T, cfg serverwriter.Config, d writer.Dispatcher) *serverwriter.Writer {
	t.Helper()
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	s, err := serverwriter.New(cfg, writer.WithDispatcher(d))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newClient(t *testing.T, cfg clientwriter.Config) *clientwriter.Writer {
	t.Helper()
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 50 * time.Millisecond
	}
	c, err := clientwriter.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func record(level core.Level, msg string) *core.Record {
	return &core.Record{Time: time.Now(), Level: level, Domain: "remote", Message: msg}
}

func freeAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRemote_RoundTrip(t *testing.T) {
	aes, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)
	auth, err := netproto.CreateRandomKey(netproto.EncryptionAuthKey)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method netproto.EncryptionMethod
		key    []byte
	}{
		{"none", netproto.EncryptionNone, nil},
		{"authkey", netproto.EncryptionAuthKey, auth},
		{"aes", netproto.EncryptionAES, aes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := &sink{}
			srv := newServer(t, serverwriter.Config{Encryption: tt.method, Key: tt.key}, got)
			cli := newClient(t, clientwriter.Config{
				Address:    srv.Addr().String(),
				Encryption: tt.method,
				Key:        tt.key,
			})

			for i := 0; i < 20; i++ {
				cli.Enqueue(record(core.InfoLevel, fmt.Sprintf("msg %d", i)))
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			require.NoError(t, cli.Flush(ctx))

			require.Eventually(t, func() bool { return got.len() == 20 }, 5*time.Second, 10*time.Millisecond)
			msgs := got.messages()
			for i, m := range msgs {
				assert.Equal(t, fmt.Sprintf("msg %d", i), m)
			}
			assert.Equal(t, uint64(20), cli.Stats().ProcessedTotal)
			assert.Equal(t, uint64(1), cli.Stats().ReconnectsTotal)
			assert.Eventually(t, func() bool { return len(srv.Clients()) == 1 }, time.Second, 10*time.Millisecond)
			assert.Equal(t, cli.ID(), srv.Clients()[0])
		})
	}
}

func TestRemote_RecordFieldsSurvive(t *testing.T) {
	got := &sink{}
	srv := newServer(t, serverwriter.Config{}, got)
	cli := newClient(t, clientwriter.Config{Address: srv.Addr().String()})

	ts := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	cli.Enqueue(&core.Record{
		Time: ts, Level: core.Level(33), Domain: "svc", Message: "hello",
		Hostname: "h", PID: 42, ThreadID: 7,
		Present: core.WithHostname | core.WithPID | core.WithThreadID,
	})
	require.Eventually(t, func() bool { return got.len() == 1 }, 5*time.Second, 10*time.Millisecond)

	rec := got.recs[0]
	assert.True(t, rec.Time.Equal(ts))
	assert.Equal(t, core.Level(33), rec.Level)
	assert.Equal(t, "svc", rec.Domain)
	assert.Equal(t, "h", rec.Hostname)
	assert.Equal(t, 42, rec.PID)
	assert.Equal(t, uint64(7), rec.ThreadID)
}

func TestServer_LevelFilter(t *testing.T) {
	got := &sink{}
	srv := newServer(t, serverwriter.Config{Level: core.WarningLevel}, got)
	cli := newClient(t, clientwriter.Config{Address: srv.Addr().String()})

	cli.Enqueue(record(core.InfoLevel, "dropped"))
	cli.Enqueue(record(core.ErrorLevel, "kept"))
	cli.Enqueue(record(core.DebugLevel, "dropped"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, cli.Flush(ctx))

	require.Eventually(t, func() bool { return got.len() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"kept"}, got.messages())

	srv.SetEnabled(false)
	cli.Enqueue(record(core.ErrorLevel, "disabled"))
	require.NoError(t, cli.Flush(ctx))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"kept"}, got.messages())
}

func TestClient_QueuesWhileDisconnected(t *testing.T) {
	addr := freeAddress(t)
	cli := newClient(t, clientwriter.Config{Address: addr, BufferSize: 10})

	for i := 0; i < 100; i++ {
		cli.Enqueue(record(core.InfoLevel, fmt.Sprintf("msg %d", i)))
	}
	assert.Equal(t, uint64(90), cli.Stats().DroppedTotal)

	got := &sink{}
	newServer(t, serverwriter.Config{Address: addr}, got)

	require.Eventually(t, func() bool { return got.len() == 10 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	msgs := got.messages()
	require.Len(t, msgs, 10)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("msg %d", 90+i), m)
	}
}

func TestClient_FlushTimesOutWhileDisconnected(t *testing.T) {
	cli := newClient(t, clientwriter.Config{Address: freeAddress(t)})
	cli.Enqueue(record(core.InfoLevel, "stuck"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, cli.Flush(ctx), context.DeadlineExceeded)
}

func TestClient_ReconnectsAfterServerRestart(t *testing.T) {
	addr := freeAddress(t)
	first := &sink{}
	srv, err := serverwriter.New(serverwriter.Config{Address: addr}, writer.WithDispatcher(first))
	require.NoError(t, err)

	cli := newClient(t, clientwriter.Config{Address: addr})
	cli.Enqueue(record(core.InfoLevel, "before"))
	require.Eventually(t, func() bool { return first.len() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, srv.Close())

	second := &sink{}
	newServer(t, serverwriter.Config{Address: addr}, second)
	cli.Enqueue(record(core.InfoLevel, "after"))

	require.Eventually(t, func() bool {
		for _, m := range second.messages() {
			if m == "after" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, cli.Stats().ReconnectsTotal, uint64(2))
}

func TestRemote_MethodMismatchDeliversNothing(t *testing.T) {
	key, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)
	got := &sink{}
	srv := newServer(t, serverwriter.Config{Encryption: netproto.EncryptionAES, Key: key}, got)
	cli := newClient(t, clientwriter.Config{Address: srv.Addr().String()})

	cli.Enqueue(record(core.ErrorLevel, "plain"))
	require.Eventually(t, func() bool { return srv.Stats().ErrorsTotal > 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, got.len())
	assert.Zero(t, cli.Stats().ProcessedTotal)
}

func TestClient_RejectedHandshakeCounted(t *testing.T) {
	srv := newServer(t, serverwriter.Config{Encryption: netproto.EncryptionAuthKey, Key: []byte("right")}, &sink{})
	cli := newClient(t, clientwriter.Config{
		Address:    srv.Addr().String(),
		Encryption: netproto.EncryptionAuthKey,
		Key:        []byte("wrong"),
	})
	cli.Enqueue(record(core.InfoLevel, "never sent"))

	require.Eventually(t, func() bool { return cli.Stats().ErrorsTotal > 0 }, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := cli.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, core.ErrProtocol)
	assert.Zero(t, cli.Stats().ProcessedTotal)
}

func TestServer_RefusesBuggyHost(t *testing.T) {
	key, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)
	wrong, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)

	srv := newServer(t, serverwriter.Config{Encryption: netproto.EncryptionAES, Key: key, MaxClientErrors: 2}, &sink{})
	newClient(t, clientwriter.Config{
		Address:    srv.Addr().String(),
		Encryption: netproto.EncryptionAES,
		Key:        wrong,
	})

	require.Eventually(t, func() bool { return srv.Stats().ErrorsTotal >= 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, uint64(2), srv.Stats().ErrorsTotal, "host should be refused before the handshake")
}

func TestRemote_SetEncryption(t *testing.T) {
	key1, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)
	key2, err := netproto.CreateRandomKey(netproto.EncryptionAES)
	require.NoError(t, err)

	got := &sink{}
	srv := newServer(t, serverwriter.Config{Encryption: netproto.EncryptionAES, Key: key1}, got)
	cli := newClient(t, clientwriter.Config{
		Address:    srv.Addr().String(),
		Encryption: netproto.EncryptionAES,
		Key:        key1,
	})

	cli.Enqueue(record(core.InfoLevel, "one"))
	require.Eventually(t, func() bool { return got.len() == 1 }, 5*time.Second, 10*time.Millisecond)

	enc := netproto.Encryption{Method: netproto.EncryptionAES, Key: key2}
	require.NoError(t, srv.SetEncryption(enc))
	require.NoError(t, cli.SetEncryption(enc))
	assert.Equal(t, key2, cli.Config().Key)
	require.Eventually(t, func() bool { return len(srv.Clients()) == 1 && cli.Stats().ReconnectsTotal >= 2 }, 5*time.Second, 10*time.Millisecond)

	cli.Enqueue(record(core.InfoLevel, "two"))
	require.Eventually(t, func() bool { return got.len() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"one", "two"}, got.messages())

	bad := netproto.Encryption{Method: netproto.EncryptionAES, Key: []byte("short")}
	assert.ErrorIs(t, cli.SetEncryption(bad), core.ErrConfiguration)
	assert.ErrorIs(t, srv.SetEncryption(bad), core.ErrConfiguration)
}

func TestClient_CloseDrains(t *testing.T) {
	got := &sink{}
	srv := newServer(t, serverwriter.Config{}, got)
	cli, err := clientwriter.New(clientwriter.Config{Address: srv.Addr().String()})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		cli.Enqueue(record(core.InfoLevel, "m"))
	}
	require.NoError(t, cli.Close())
	require.Eventually(t, func() bool { return got.len() == 50 }, 5*time.Second, 10*time.Millisecond)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	got := &sink{}
	srv := newServer(t, serverwriter.Config{}, got)

	_, err := serverwriter.New(serverwriter.Config{Address: srv.Addr().String()}, writer.WithDispatcher(got))
	assert.ErrorIs(t, err, core.ErrConfiguration, "address in use")

	_, err = serverwriter.New(serverwriter.Config{Address: "127.0.0.1:0"})
	assert.ErrorIs(t, err, core.ErrConfiguration, "missing dispatcher")

	_, err = serverwriter.New(serverwriter.Config{Address: "127.0.0.1:0", Encryption: netproto.EncryptionAES}, writer.WithDispatcher(got))
	assert.ErrorIs(t, err, core.ErrConfiguration, "AES without key")

	_, err = clientwriter.New(clientwriter.Config{Address: "no-port"})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = clientwriter.New(clientwriter.Config{Address: "127.0.0.1:1", Encryption: netproto.EncryptionAuthKey})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestWriterKeys(t *testing.T) {
	srv := newServer(t, serverwriter.Config{Address: "127.0.0.1:0"}, &sink{})
	assert.Equal(t, core.WriterKey{Kind: core.KindServer, Address: "127.0.0.1:0"}, srv.Key())

	cli := newClient(t, clientwriter.Config{Address: srv.Addr().String()})
	assert.Equal(t, core.KindClient, cli.Key().Kind)
	assert.Equal(t, srv.Addr().String(), cli.Key().Address)

	var _ writer.Encrypter = cli
	var _ writer.Encrypter = srv
	var _ writer.Addresser = srv
}
