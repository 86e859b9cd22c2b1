// Package logging provides the coordinator of the fastlogging engine.
//
// A Logging instance owns a set of writers and routes every record to each
// of them independently. Filtering happens in two stages: the global level
// and a fast path minimum reject records no writer can accept before a
// record is built, then each writer's own level and enabled flag decide
// delivery:
//
//	record.Level >= writer.Level && writer.Level != NoLogLevel
//
// Emitting never blocks on I/O. Each writer performs its I/O on its own
// goroutine and drops its oldest queued record when its queue is full.
// Sync waits for writers to catch up and Shutdown drains or discards what
// is left.
//
// Basic usage:
//
//	l, err := logging.New(logging.Config{
//		Level: core.DebugLevel,
//		Writers: []logging.WriterConfig{
//			{Console: &consolewriter.Config{Level: core.WarningLevel}},
//			{File: &filewriter.Config{Level: core.DebugLevel, Path: "app.log"}},
//		},
//	})
//	if err != nil {
//		return err
//	}
//	defer l.Shutdown(false)
//	l.Info("started")
//
// The configuration of a running instance can be stored with SaveConfig
// and loaded with LoadConfig or NewFromFile. Keys of network writers are
// kept apart in a key file written by SaveKeys.
package logging
