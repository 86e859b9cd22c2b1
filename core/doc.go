// Package core defines the shared types used across the fastlogging engine.
//
// It provides the Level scale used for filtering, the Record type that
// represents a single log event, the ExtConfig that selects which process
// facts are attached to records, and the error kinds every other package
// wraps.
//
// Levels are small integers. The named levels are spaced out so that
// applications can use values in between; such a value renders like the
// next lower named level. A destination whose level is NoLogLevel receives
// nothing, so the delivery rule is:
//
//	record.Level >= writer.Level && writer.Level != NoLogLevel
//
// A Record is immutable once built. The engine builds it once per emitted
// event and shares the pointer between all destinations, so no writer may
// modify it. Timestamps come from xclock, which lets tests freeze time.
//
// Process facts (host name, executable name, pid) are resolved once per
// process. Go has no stable OS thread identity, so the thread id attached to
// a record is the id of the emitting goroutine and the thread name is the
// name given to the emitting Logger.
package core
