// Package bmff opens ISO base media files and summarizes their box trees.
package bmff

import (
	"fmt"
	"io"
	"time"

	"github.com/ugparu/isobmff/format/bmff/bmffio"
	"github.com/ugparu/isobmff/utils/buffer"
	"github.com/ugparu/isobmff/utils/logger"
)

// Open maps the file at path read-only and decodes it. Decoded boxes copy what they keep, so
// the mapping is released before Open returns.
func Open(path string, opts ...bmffio.Option) (*bmffio.File, error) {
	region, err := buffer.MapFile(path)
	if err != nil {
		return nil, err
	}
	view := region.View(0, region.Len())
	region.Release()
	defer view.Release()

	return parse(path, view.Data(), opts...)
}

// Load reads r to EOF and decodes the result. A positive limit caps how many bytes are read;
// larger inputs fail with buffer.ErrTooLarge.
func Load(r io.Reader, limit int64, opts ...bmffio.Option) (*bmffio.File, error) {
	buf, err := buffer.ReadAll(r, limit)
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	return parse("reader", buf.Data(), opts...)
}

func parse(name string, b []byte, opts ...bmffio.Option) (*bmffio.File, error) {
	start := time.Now()
	f, err := bmffio.Parse(b, opts...)
	if err != nil {
		logger.Debugf(name, "decode failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("bmff: %s: %w", name, err)
	}
	logger.Debugf(name, "decoded %d bytes, %d top-level boxes in %v", len(b), len(f.Children()), time.Since(start))
	return f, nil
}

// CountBoxes returns how many boxes the tree holds, the root excluded.
func CountBoxes(f *bmffio.File) (n int) {
	_ = bmffio.Walk(f, func(_ bmffio.Box, depth int) error {
		if depth > 0 {
			n++
		}
		return nil
	})
	return
}
