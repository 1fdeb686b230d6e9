package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const SIDX = Tag(0x73696478)

const LenSegmentReference = 12

type SegmentReference struct {
	ReferenceType      uint8 // 1 when the reference points at another 'sidx'
	ReferencedSize     uint32
	SubsegmentDuration uint32
	StartsWithSAP      bool
	SAPType            uint8
	SAPDeltaTime       uint32
}

func GetSegmentReference(b []byte) (self SegmentReference) {
	v := pio.U32BE(b[0:])
	self.ReferenceType = uint8(v >> 31)
	self.ReferencedSize = v & 0x7fffffff
	self.SubsegmentDuration = pio.U32BE(b[4:])
	v = pio.U32BE(b[8:])
	self.StartsWithSAP = v>>31 == 1
	self.SAPType = uint8(v >> 28 & 0x7)
	self.SAPDeltaTime = v & 0x0fffffff
	return
}

type SegmentIndex struct {
	BoxHeader
	FullBox
	ReferenceID              uint32
	Timescale                uint32
	EarliestPresentationTime uint64
	FirstOffset              uint64
	Entries                  []SegmentReference
}

func (sidx *SegmentIndex) GetEntryCount() int {
	return len(sidx.Entries)
}

func (sidx *SegmentIndex) GetReference(i int) (SegmentReference, error) {
	if err := checkIndex(i, len(sidx.Entries)); err != nil {
		return SegmentReference{}, err
	}
	return sidx.Entries[i], nil
}

func decodeSegmentIndex(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	sidx := &SegmentIndex{BoxHeader: hdr}
	var err error
	if sidx.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if sidx.ReferenceID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if sidx.Timescale, err = c.ReadU32(); err != nil {
		return nil, err
	}
	width := 8
	if sidx.Version == 0 {
		width = 4
	}
	if sidx.EarliestPresentationTime, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	if sidx.FirstOffset, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	if err = c.Skip(2); err != nil {
		return nil, err
	}
	var count uint16
	if count, err = c.ReadU16(); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.next(LenSegmentReference * int(count)); err != nil {
		return nil, err
	}
	sidx.Entries = make([]SegmentReference, count)
	for i := range sidx.Entries {
		sidx.Entries[i] = GetSegmentReference(b[LenSegmentReference*i:])
	}
	return sidx, nil
}

func init() {
	register(decodeSegmentIndex, SIDX)
}
