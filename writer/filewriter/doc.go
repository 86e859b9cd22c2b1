// Package filewriter provides a writer that appends formatted records to a
// file and rotates it.
//
// Rotation is triggered when the active file has reached Config.MaxSize
// (checked before each record), when Config.Interval has elapsed since the
// last rotation, or explicitly through Rotate. An explicit rotation is
// ordered after every record queued before the request. Rotating an empty
// file does nothing, so repeated requests are harmless.
//
// Rolled files are numbered: the most recent is <path>.1, the oldest
// <path>.<Backlog>, and the file that would become <path>.<Backlog+1> is
// removed. With Deflate, Zstd or Lzma compression the rolled file gets the
// .gz, .zst or .lzma suffix; if compression fails the file is kept
// uncompressed. If the active file cannot be moved, the writer reopens it
// and keeps appending so no record is lost.
package filewriter
