// Package bmffio decodes ISO base media file format (MP4, MOV, HEIF) box trees.
//
// Parse walks the source depth first. Every box is handed to the decoder registered for its
// type code together with a cursor scoped to the box's declared payload, so a decoder can
// never read into a sibling. Payload bytes a decoder leaves unread are skipped and counted in
// BoxHeader.Trailing. Types without a decoder are kept as OpaqueBox with their raw payload.
package bmffio

import (
	"math"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/google/uuid"
)

const (
	HeaderSize      = 8
	LargeHeaderSize = 16
	UserTypeSize    = 16
)

const UUID = Tag(0x75756964)

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time1904 converts seconds since midnight, Jan 1, 1904 UTC.
func Time1904(sec uint64) time.Time {
	if sec > math.MaxInt64/uint64(time.Second) {
		return epoch1904.Add(time.Duration(math.MaxInt64))
	}
	return epoch1904.Add(time.Second * time.Duration(sec))
}

func GetFixed16(b []byte) float64 {
	return float64(b[0]) + float64(b[1])/256.0
}

func GetSignedFixed16(b []byte) float64 {
	return float64(pio.I16BE(b)) / 256.0
}

func GetFixed32(b []byte) float64 {
	return float64(pio.U16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}

// ScaledDuration converts a duration expressed in timescale units.
func ScaledDuration(units uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	ts := uint64(timescale)
	sec, rem := units/ts, units%ts
	return time.Duration(sec)*time.Second + time.Duration(rem)*time.Second/time.Duration(ts)
}

type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

// Box is one decoded node of the tree.
type Box interface {
	Tag() Tag
	Header() *BoxHeader
	Children() []Box
}

// BoxHeader is embedded in every box and records where the box came from.
type BoxHeader struct {
	Type       Tag
	Offset     int64  // absolute offset of the first header byte
	Size       uint64 // declared size including the header
	HeaderSize int
	UserType   uuid.UUID // extended type of 'uuid' boxes
	Trailing   int       // payload bytes the decoder did not consume
}

func (h *BoxHeader) Tag() Tag {
	return h.Type
}

func (h *BoxHeader) Header() *BoxHeader {
	return h
}

func (h *BoxHeader) Children() []Box {
	return nil
}

// PayloadSize returns the declared size minus the header.
func (h *BoxHeader) PayloadSize() uint64 {
	return h.Size - uint64(h.HeaderSize)
}

// DataOffset returns the absolute offset of the first payload byte.
func (h *BoxHeader) DataOffset() int64 {
	return h.Offset + int64(h.HeaderSize)
}

// FullBox is the version and flags preamble of versioned boxes.
type FullBox struct {
	Version uint8
	Flags   uint32
}

func (f *FullBox) GetVersion() uint8 {
	return f.Version
}

func (f *FullBox) GetFlags() uint32 {
	return f.Flags
}

func readFullBox(c *Cursor) (fb FullBox, err error) {
	var v uint32
	if v, err = c.ReadU32(); err != nil {
		return
	}
	fb.Version = uint8(v >> 24)
	fb.Flags = v & 0x00ffffff
	return
}

// timeWidth is the width of timestamp and duration fields: version 1 widens them to 64 bits.
func timeWidth(version uint8) int {
	if version == 1 {
		return 8
	}
	return 4
}

// OpaqueBox keeps the payload of a box nobody registered a decoder for.
type OpaqueBox struct {
	BoxHeader
	Data []byte
}

func decodeOpaque(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	data, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	return &OpaqueBox{BoxHeader: hdr, Data: data}, nil
}

// Container is a box with an ordered list of children.
type Container interface {
	Box
	GetBox(tag Tag) Box
	GetBoxes(tag Tag) []Box
}

// BoxList is an ordered list of boxes in stream order.
type BoxList []Box

// GetBox returns the first child of the given type, or nil.
func (l BoxList) GetBox(tag Tag) Box {
	for _, b := range l {
		if b.Tag() == tag {
			return b
		}
	}
	return nil
}

// GetBoxes returns every child of the given type in stream order.
func (l BoxList) GetBoxes(tag Tag) (r []Box) {
	for _, b := range l {
		if b.Tag() == tag {
			r = append(r, b)
		}
	}
	return
}

func (l *BoxList) AddBox(b Box) {
	if b != nil {
		*l = append(*l, b)
	}
}

// ContainerBox is a box whose payload is nothing but child boxes.
type ContainerBox struct {
	BoxHeader
	BoxList
}

func (c *ContainerBox) Children() []Box {
	return c.BoxList
}

func decodeContainer(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	box := &ContainerBox{BoxHeader: hdr}
	var err error
	if box.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return box, nil
}

// File is the root of a decoded tree. Its header spans the whole source.
type File struct {
	ContainerBox
}

// GetTypedBox returns the first child of c with the given type if it decoded to T.
func GetTypedBox[T Box](c Container, tag Tag) (v T, ok bool) {
	v, ok = c.GetBox(tag).(T)
	return
}

// GetTypedBoxes returns every child of c with the given type that decoded to T.
func GetTypedBoxes[T Box](c Container, tag Tag) (r []T) {
	for _, b := range c.GetBoxes(tag) {
		if v, ok := b.(T); ok {
			r = append(r, v)
		}
	}
	return
}

// FindBox follows a path of types from root, taking the first match at each level.
func FindBox(root Box, path ...Tag) Box {
	cur := root
	for _, tag := range path {
		var next Box
		for _, child := range cur.Children() {
			if child.Tag() == tag {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// FindChildren searches the subtree depth first and returns the first box of the given type.
func FindChildren(root Box, tag Tag) Box {
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}

// Walk visits root and its descendants in pre-order. Returning an error stops the walk.
func Walk(root Box, fn func(b Box, depth int) error) error {
	return walk(root, 0, fn)
}

func walk(b Box, depth int, fn func(Box, int) error) error {
	if err := fn(b, depth); err != nil {
		return err
	}
	for _, child := range b.Children() {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
