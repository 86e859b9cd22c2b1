package filewriter

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"
	"go.uber.org/multierr"
)

func newCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Deflate:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case Zstd:
		return zstd.NewWriter(w)
	case Lzma:
		return lzma.NewWriter(w)
	default:
		return nil, fmt.Errorf("no compressor for %s", c)
	}
}

// compressFile writes a compressed copy of src to dst. dst is removed again
// when anything fails.
func compressFile(src, dst string, c Compression) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	zw, err := newCompressor(out, c)
	if err != nil {
		return err
	}
	if _, err := io.Copy(zw, in); err != nil {
		return multierr.Append(err, zw.Close())
	}
	return zw.Close()
}
