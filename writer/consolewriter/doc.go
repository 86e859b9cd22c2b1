// Package consolewriter provides a writer that prints formatted records
// to stdout and stderr.
//
// The writer works in two modes selected by Config.Async:
//
//   - In sync mode each record is formatted and written on the calling
//     goroutine under the writer lock. Flush only reports errors.
//   - In async mode records go through a bounded queue drained by a
//     dedicated background goroutine, like every other writer.
//
// Config.Target routes records to stdout, stderr, or both (records below
// ERROR to stdout, the rest to stderr). With Colors set, each line is
// colored by level when the stream is a terminal; ForceColors skips the
// terminal check. Optional regular expressions filter records by domain
// and by message.
//
// The first failed write is reported once through the diagnostics logger
// and disables the writer.
package consolewriter
