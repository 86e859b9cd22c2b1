// Package serverwriter provides the receiving side of remote logging.
//
// A server writer listens on a TCP address and accepts connections from
// clientwriter instances. Every record read from a client is checked
// against the server writer's own level and enabled flag and then handed
// to the Dispatcher, which routes it to the local writers as if it had
// been emitted locally. Records keep the timestamp and level the client
// gave them.
//
// Hosts that fail the handshake MaxClientErrors times in a row are refused
// without a handshake until the server writer is recreated.
package serverwriter
