// Package writer provides the Writer interface and the building blocks its
// implementations share.
//
// A Writer receives immutable records through Enqueue, which never blocks
// on I/O. Each implementation owns a bounded Queue and exactly one
// background goroutine that takes records in batches and performs the
// physical write, so records reach a destination in the order they were
// enqueued. When a queue is full the oldest queued record is dropped and
// counted; producers are never stalled.
//
// Flush waits, up to the caller's context, until everything enqueued
// before the call has been written or dropped, and reports the I/O errors
// seen since the previous Flush. Close drains the queue for at most the
// writer's drain timeout and then releases its resources.
//
// Implementations live in sub-packages:
//
//   - consolewriter writes colored or plain lines to stdout and stderr.
//   - filewriter appends to a file and rotates it by size, by interval or
//     on request, keeping a numbered and optionally compressed backlog.
//   - clientwriter forwards records to a remote server writer over an
//     authenticated, encrypted TCP link and reconnects with backoff.
//   - serverwriter accepts client connections and hands every received
//     record to a Dispatcher.
//   - syslogwriter forwards records to the system log.
//   - callbackwriter hands records to a user function.
//
// All writers count processed, dropped and failed records in Stats. Their
// own diagnostics go to the zap.Logger passed with WithDiagnostics.
package writer
