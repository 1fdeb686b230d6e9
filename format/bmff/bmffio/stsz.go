package bmffio

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	STSZ = Tag(0x7374737a)
	STZ2 = Tag(0x73747a32)
)

// SampleSize is an 'stsz' or 'stz2' table. When SampleSize is non-zero every sample has that
// size and Entries is empty.
type SampleSize struct {
	BoxHeader
	FullBox
	SampleSize  uint32
	SampleCount uint32
	FieldSize   uint8 // 'stz2' only
	Entries     []uint32
}

func (stsz *SampleSize) GetEntryCount() int {
	return int(stsz.SampleCount)
}

func (stsz *SampleSize) GetSampleSize(i int) (uint32, error) {
	if err := checkIndex(i, int(stsz.SampleCount)); err != nil {
		return 0, err
	}
	if stsz.SampleSize != 0 {
		return stsz.SampleSize, nil
	}
	return stsz.Entries[i], nil
}

func decodeSampleSize(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stsz := &SampleSize{BoxHeader: hdr}
	var err error
	if stsz.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if stsz.SampleSize, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if stsz.SampleSize != 0 {
		if stsz.SampleCount, err = c.ReadU32(); err != nil {
			return nil, err
		}
		return stsz, nil
	}
	var count int
	if count, err = readEntryCount(c, 4); err != nil {
		return nil, err
	}
	stsz.SampleCount = uint32(count)
	b, _ := c.next(4 * count)
	stsz.Entries = make([]uint32, count)
	for i := range stsz.Entries {
		stsz.Entries[i] = pio.U32BE(b[4*i:])
	}
	return stsz, nil
}

func decodeCompactSampleSize(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stz2 := &SampleSize{BoxHeader: hdr}
	var err error
	if stz2.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var v uint32
	if v, err = c.ReadU32(); err != nil {
		return nil, err
	}
	stz2.FieldSize = uint8(v)
	if stz2.SampleCount, err = c.ReadU32(); err != nil {
		return nil, err
	}
	count := uint64(stz2.SampleCount)

	var n uint64
	switch stz2.FieldSize {
	case 4:
		n = (count + 1) / 2
	case 8:
		n = count
	case 16:
		n = count * 2
	default:
		return nil, fmt.Errorf("bmffio: stz2 field size %d", stz2.FieldSize)
	}
	if err = c.need(n); err != nil {
		return nil, err
	}
	b, _ := c.next(int(n))
	stz2.Entries = make([]uint32, count)
	for i := range stz2.Entries {
		switch stz2.FieldSize {
		case 4:
			if i%2 == 0 {
				stz2.Entries[i] = uint32(b[i/2] >> 4)
			} else {
				stz2.Entries[i] = uint32(b[i/2] & 0x0f)
			}
		case 8:
			stz2.Entries[i] = uint32(b[i])
		case 16:
			stz2.Entries[i] = uint32(pio.U16BE(b[2*i:]))
		}
	}
	return stz2, nil
}

func init() {
	register(decodeSampleSize, STSZ)
	register(decodeCompactSampleSize, STZ2)
}
