// Package formatter defines how records are serialized into bytes.
//
// A record carries the structuring mode chosen by the Logging instance that
// built it. For picks the matching formatter: TextFormatter for plain lines,
// JSONFormatter for one JSON object per line and XMLFormatter for one <log>
// element per line. All of them render only the enrichment fields that are
// present on the record, and render the level with the record's LevelSyms.
//
// Formatters append into a caller-provided bytes.Buffer and rely on Go's
// Append-style functions (time.AppendFormat, strconv.AppendInt) so that
// the write path does not allocate. Writers that format outside their own
// buffer use GetBuffer and PutBuffer. Buffers larger than 64 KiB are not
// returned to the pool to prevent a single large log line from permanently
// inflating memory usage.
package formatter
