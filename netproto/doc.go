// Package netproto implements the link between a client writer and a
// server writer.
//
// A connection starts with a handshake. The client sends a hello carrying
// the protocol magic and version, the encryption method it is configured
// with and its 16 byte client id. A server configured with a different
// method rejects the connection. For the keyed methods (AuthKey and AES)
// the server answers with a random challenge, the client proves knowledge
// of the key with HMAC-SHA256 over the challenge and its id, and the
// server proves its own knowledge of the key in return. Either side closes
// the connection on a mismatch.
//
// After the handshake the stream is a sequence of frames:
//
//	length u32 (big endian, type byte included) | type u8 | payload
//
// Payloads are capped at MaxFrameSize. For keyed methods every payload is
// sealed with AES-256-GCM under a key derived from the shared key and the
// connection's challenge, with a fresh random nonce per frame, so no record
// travels in clear text once a key is configured.
//
// Record frames carry the compact binary encoding produced by AppendRecord.
// Ping frames carry no data and keep idle connections alive.
package netproto
