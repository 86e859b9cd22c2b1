package core

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

// ProcessInfo holds facts about the running process that never change.
type ProcessInfo struct {
	Hostname string
	Name     string
	PID      int
}

var (
	processOnce sync.Once
	process     ProcessInfo
)

// Process returns the cached process facts. They are resolved exactly once.
func Process() ProcessInfo {
	processOnce.Do(func() {
		process.PID = os.Getpid()
		process.Hostname, _ = os.Hostname()
		if exe, err := os.Executable(); err == nil {
			process.Name = filepath.Base(exe)
		} else if len(os.Args) > 0 {
			process.Name = filepath.Base(os.Args[0])
		}
	})
	return process
}

var goroutinePrefix = []byte("goroutine ")

// GoroutineID returns the id of the calling goroutine, or 0 if it cannot
// be determined.
func GoroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
