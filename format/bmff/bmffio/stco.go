package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const (
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
)

// ChunkOffsets is implemented by both chunk offset tables.
type ChunkOffsets interface {
	Box
	GetEntryCount() int
	GetChunkOffset(i int) (uint64, error)
}

// ChunkOffset is the 'stco' table of 32-bit absolute chunk offsets.
type ChunkOffset struct {
	BoxHeader
	FullBox
	Entries []uint32
}

func (stco *ChunkOffset) GetEntryCount() int {
	return len(stco.Entries)
}

func (stco *ChunkOffset) GetChunkOffset(i int) (uint64, error) {
	if err := checkIndex(i, len(stco.Entries)); err != nil {
		return 0, err
	}
	return uint64(stco.Entries[i]), nil
}

func decodeChunkOffset(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stco := &ChunkOffset{BoxHeader: hdr}
	var err error
	if stco.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, 4); err != nil {
		return nil, err
	}
	b, _ := c.next(4 * count)
	stco.Entries = make([]uint32, count)
	for i := range stco.Entries {
		stco.Entries[i] = pio.U32BE(b[4*i:])
	}
	return stco, nil
}

// ChunkLargeOffset is the 'co64' table of 64-bit absolute chunk offsets.
type ChunkLargeOffset struct {
	BoxHeader
	FullBox
	Entries []uint64
}

func (co64 *ChunkLargeOffset) GetEntryCount() int {
	return len(co64.Entries)
}

func (co64 *ChunkLargeOffset) GetChunkOffset(i int) (uint64, error) {
	if err := checkIndex(i, len(co64.Entries)); err != nil {
		return 0, err
	}
	return co64.Entries[i], nil
}

func decodeChunkLargeOffset(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	co64 := &ChunkLargeOffset{BoxHeader: hdr}
	var err error
	if co64.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, 8); err != nil {
		return nil, err
	}
	b, _ := c.next(8 * count)
	co64.Entries = make([]uint64, count)
	for i := range co64.Entries {
		co64.Entries[i] = pio.U64BE(b[8*i:])
	}
	return co64, nil
}

func init() {
	register(decodeChunkOffset, STCO)
	register(decodeChunkLargeOffset, CO64)
}
