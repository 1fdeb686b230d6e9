package buffer

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
)

// MmapRegion is a read-only shared mapping of a whole file. Views share the mapping and it is
// unmapped once the owner and every view have released it.
type MmapRegion struct {
	data []byte
	refs int32
}

// NewMmapRegion maps size bytes of fd. The initial reference belongs to the caller.
func NewMmapRegion(fd uintptr, size int) (*MmapRegion, error) {
	if size == 0 {
		return &MmapRegion{refs: 1}, nil
	}
	data, err := syscall.Mmap(int(fd), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &MmapRegion{data: data, refs: 1}, nil
}

// MapFile maps the file at path. The descriptor is closed before returning; the mapping stays
// valid until released.
func MapFile(path string) (*MmapRegion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("buffer: %s is not a regular file", path)
	}
	if fi.Size() != int64(int(fi.Size())) {
		return nil, fmt.Errorf("buffer: %s is too large to map", path)
	}
	return NewMmapRegion(f.Fd(), int(fi.Size()))
}

func (r *MmapRegion) Len() int {
	return len(r.data)
}

// View returns a buffer over data[offset:offset+length] that holds its own reference.
func (r *MmapRegion) View(offset, length int) PooledBuffer {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		panic("MmapRegion.View: out of bounds")
	}
	atomic.AddInt32(&r.refs, 1)
	return &mmapViewBuffer{
		region: r,
		buf:    r.data[offset : offset+length : offset+length],
	}
}

// Release drops one reference and unmaps when none are left.
func (r *MmapRegion) Release() {
	if atomic.AddInt32(&r.refs, -1) == 0 && r.data != nil {
		_ = syscall.Munmap(r.data)
		r.data = nil
	}
}

type mmapViewBuffer struct {
	region *MmapRegion
	buf    []byte
}

func (b *mmapViewBuffer) Data() []byte {
	return b.buf
}

func (b *mmapViewBuffer) Len() int {
	return len(b.buf)
}

func (b *mmapViewBuffer) Release() {
	if b.region != nil {
		b.region.Release()
		b.region = nil
		b.buf = nil
	}
}
