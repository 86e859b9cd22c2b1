// Package clientwriter provides a writer that forwards records to a remote
// serverwriter over TCP.
//
// The writer connects in the background and reconnects with exponential
// backoff whenever the link fails. It takes records from its queue only
// while connected, so during an outage the queue keeps the newest
// BufferSize records and drops older ones. A batch that fails halfway is
// put back in front of the queue and resent after reconnecting; delivery
// is therefore at least once.
//
// Each connection starts with the netproto handshake using the configured
// encryption method and key. SetEncryption replaces them; the link is
// renegotiated before the next record is sent. Idle links carry a ping
// frame every KeepAlive so broken connections are noticed.
package clientwriter
