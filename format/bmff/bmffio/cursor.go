package bmffio

import (
	"bytes"
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

// Cursor reads big-endian values from a bounded byte range. A read that does not fit in the
// remaining bytes fails with *UnderrunError and leaves the cursor untouched.
type Cursor struct {
	b    []byte
	pos  int
	base int64
}

// NewCursor returns a cursor over b. base is the absolute offset of b[0] in the source and is
// only used for reporting positions.
func NewCursor(b []byte, base int64) *Cursor {
	return &Cursor{b: b, base: base}
}

// Position returns the absolute offset of the next byte to be read.
func (c *Cursor) Position() int64 {
	return c.base + int64(c.pos)
}

// Remaining returns the number of unread bytes in the cursor's range.
func (c *Cursor) Remaining() int {
	return len(c.b) - c.pos
}

// Consumed returns the number of bytes read so far.
func (c *Cursor) Consumed() int {
	return c.pos
}

// Len returns the total length of the cursor's range.
func (c *Cursor) Len() int {
	return len(c.b)
}

func (c *Cursor) need(n uint64) error {
	if n > uint64(c.Remaining()) {
		return &UnderrunError{Offset: c.Position(), Requested: n, Available: uint64(c.Remaining())}
	}
	return nil
}

// next returns a view of the next n bytes and advances past them. The view aliases the
// source and must not be retained.
func (c *Cursor) next(n int) (b []byte, err error) {
	if n < 0 {
		return nil, fmt.Errorf("bmffio: negative read length %d", n)
	}
	if err = c.need(uint64(n)); err != nil {
		return
	}
	b = c.b[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return
}

// Peek returns a copy of the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("bmffio: negative read length %d", n)
	}
	if err := c.need(uint64(n)); err != nil {
		return nil, err
	}
	return bytes.Clone(c.b[c.pos : c.pos+n]), nil
}

func (c *Cursor) ReadU8() (v uint8, err error) {
	if err = c.need(1); err != nil {
		return
	}
	v = pio.U8(c.b[c.pos:])
	c.pos += 1
	return
}

func (c *Cursor) ReadU16() (v uint16, err error) {
	if err = c.need(2); err != nil {
		return
	}
	v = pio.U16BE(c.b[c.pos:])
	c.pos += 2
	return
}

func (c *Cursor) ReadI16() (v int16, err error) {
	if err = c.need(2); err != nil {
		return
	}
	v = pio.I16BE(c.b[c.pos:])
	c.pos += 2
	return
}

func (c *Cursor) ReadU24() (v uint32, err error) {
	if err = c.need(3); err != nil {
		return
	}
	v = pio.U24BE(c.b[c.pos:])
	c.pos += 3
	return
}

func (c *Cursor) ReadU32() (v uint32, err error) {
	if err = c.need(4); err != nil {
		return
	}
	v = pio.U32BE(c.b[c.pos:])
	c.pos += 4
	return
}

func (c *Cursor) ReadI32() (v int32, err error) {
	if err = c.need(4); err != nil {
		return
	}
	v = pio.I32BE(c.b[c.pos:])
	c.pos += 4
	return
}

func (c *Cursor) ReadU64() (v uint64, err error) {
	if err = c.need(8); err != nil {
		return
	}
	v = pio.U64BE(c.b[c.pos:])
	c.pos += 8
	return
}

func (c *Cursor) ReadI64() (v int64, err error) {
	if err = c.need(8); err != nil {
		return
	}
	v = pio.I64BE(c.b[c.pos:])
	c.pos += 8
	return
}

// ReadUintN reads an unsigned integer that is width bytes wide. Width 0 reads nothing and
// yields 0.
func (c *Cursor) ReadUintN(width int) (uint64, error) {
	switch width {
	case 0:
		return 0, nil
	case 1:
		v, err := c.ReadU8()
		return uint64(v), err
	case 2:
		v, err := c.ReadU16()
		return uint64(v), err
	case 3:
		v, err := c.ReadU24()
		return uint64(v), err
	case 4:
		v, err := c.ReadU32()
		return uint64(v), err
	case 8:
		return c.ReadU64()
	default:
		return 0, fmt.Errorf("bmffio: unsupported integer width %d", width)
	}
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// ReadFixedString reads an n byte text field. Trailing NUL padding is dropped.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	b, err := c.next(n)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(b, "\x00")), nil
}

// ReadCString reads a NUL terminated string. When no terminator is present the rest of the
// range is taken as the string.
func (c *Cursor) ReadCString() string {
	rest := c.b[c.pos:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		c.pos += i + 1
		return string(rest[:i])
	}
	c.pos = len(c.b)
	return string(rest)
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

// SkipAll advances to the end of the range and returns how many bytes were skipped.
func (c *Cursor) SkipAll() (n int) {
	n = c.Remaining()
	c.pos = len(c.b)
	return
}

// Scope returns a cursor limited to the next n bytes and advances c past them. Reads through
// the returned cursor can never reach bytes outside that span.
func (c *Cursor) Scope(n uint64) (*Cursor, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	end := c.pos + int(n)
	sub := &Cursor{b: c.b[c.pos:end:end], base: c.Position()}
	c.pos = end
	return sub, nil
}
