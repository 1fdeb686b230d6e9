package buffer

import (
	"errors"
	"io"
	"sync"
)

var ErrTooLarge = errors.New("buffer: data exceeds limit")

const (
	defaultBufSize = 64 * 1024
	bigBufSize     = 4 * 1024 * 1024
	maxBufSize     = 64 * 1024 * 1024 // larger buffers are left to the GC
)

var bufPool = sync.Pool{
	New: func() any {
		return &memBuffer{buf: make([]byte, 0, defaultBufSize)}
	},
}

var bigBufPool = sync.Pool{
	New: func() any {
		return &memBuffer{buf: make([]byte, 0, bigBufSize)}
	},
}

// Get returns a pooled buffer of length size.
func Get(size int) PooledBuffer {
	var b *memBuffer
	if size >= bigBufSize {
		b = bigBufPool.Get().(*memBuffer)
	} else {
		b = bufPool.Get().(*memBuffer)
	}
	if cap(b.buf) < size {
		b.buf = make([]byte, size)
	}
	b.buf = b.buf[:size]
	return b
}

// ReadAll reads r to EOF into a pooled buffer. limit bounds the result; reading more than
// limit bytes fails with ErrTooLarge. A limit of 0 means no bound.
func ReadAll(r io.Reader, limit int64) (PooledBuffer, error) {
	b := Get(0).(*memBuffer)
	for {
		if len(b.buf) == cap(b.buf) {
			b.grow()
		}
		n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		b.buf = b.buf[:len(b.buf)+n]
		if limit > 0 && int64(len(b.buf)) > limit {
			b.Release()
			return nil, ErrTooLarge
		}
		if err == io.EOF {
			return b, nil
		}
		if err != nil {
			b.Release()
			return nil, err
		}
	}
}

type memBuffer struct {
	buf []byte
}

func (b *memBuffer) Data() []byte {
	return b.buf
}

func (b *memBuffer) Len() int {
	return len(b.buf)
}

func (b *memBuffer) grow() {
	buf := make([]byte, len(b.buf), 2*cap(b.buf)+defaultBufSize)
	copy(buf, b.buf)
	b.buf = buf
}

func (b *memBuffer) Release() {
	if cap(b.buf) > maxBufSize {
		return
	}
	b.buf = b.buf[:0]
	if cap(b.buf) >= bigBufSize {
		bigBufPool.Put(b)
	} else {
		bufPool.Put(b)
	}
}
