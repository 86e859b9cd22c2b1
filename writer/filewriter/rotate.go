package filewriter

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
)

// rename moves rolled files; tests replace it to make rotation fail
var rename = os.Rename

// rolledName returns the name of backlog slot i with the given extension
func (w *Writer) rolledName(i int, ext string) string {
	return w.cfg.Path + "." + strconv.Itoa(i) + ext
}

// rotate rolls the active file into slot 1 and shifts older slots up,
// dropping the one that falls off the backlog.
func (w *Writer) rotate() error {
	if w.cfg.Backlog <= 0 {
		return fmt.Errorf("%w: rotation of %s requires a backlog", core.ErrConfiguration, w.cfg.Path)
	}
	if w.currentSize == 0 {
		return nil
	}

	if err := w.bufWriter.Flush(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		w.diag.Warn("closing file before rotation failed", zap.Error(err))
	}

	w.shiftBacklog()

	if err := w.rollActive(); err != nil {
		// Keep writing to the old file so nothing is lost.
		if openErr := w.open(os.O_APPEND); openErr != nil {
			return fmt.Errorf("rotation failed: %w, reopen failed: %w", err, openErr)
		}
		return err
	}
	return w.open(os.O_TRUNC)
}

// shiftBacklog renames slot i to slot i+1 for every slot, oldest first
func (w *Writer) shiftBacklog() {
	for _, ext := range extensions {
		name := w.rolledName(w.cfg.Backlog, ext)
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.diag.Warn("removing rolled file failed", zap.String("file", name), zap.Error(err))
		}
	}
	for i := w.cfg.Backlog - 1; i >= 1; i-- {
		for _, ext := range extensions {
			from := w.rolledName(i, ext)
			if _, err := os.Stat(from); err != nil {
				continue
			}
			if err := rename(from, w.rolledName(i+1, ext)); err != nil {
				w.diag.Warn("shifting rolled file failed", zap.String("file", from), zap.Error(err))
			}
		}
	}
}

// rollActive moves the active file into slot 1, compressing it if asked.
// When compression fails the file is rolled uncompressed.
func (w *Writer) rollActive() error {
	if w.cfg.Compression != Store {
		dst := w.rolledName(1, w.cfg.Compression.Ext())
		err := compressFile(w.cfg.Path, dst, w.cfg.Compression)
		if err == nil {
			return os.Remove(w.cfg.Path)
		}
		w.diag.Warn("compressing rolled file failed, keeping it uncompressed",
			zap.Stringer("compression", w.cfg.Compression), zap.Error(err))
		w.Counters().RecordError(err)
	}
	return rename(w.cfg.Path, w.rolledName(1, ""))
}
