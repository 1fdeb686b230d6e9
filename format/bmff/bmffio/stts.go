package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const (
	STTS = Tag(0x73747473)
	CTTS = Tag(0x63747473)
)

type TimeToSample struct {
	BoxHeader
	FullBox
	Entries []TimeToSampleEntry
}

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

const LenTimeToSampleEntry = 8

func (stts *TimeToSample) GetEntryCount() int {
	return len(stts.Entries)
}

func (stts *TimeToSample) GetTimeToSample(i int) (TimeToSampleEntry, error) {
	if err := checkIndex(i, len(stts.Entries)); err != nil {
		return TimeToSampleEntry{}, err
	}
	return stts.Entries[i], nil
}

// SampleCount sums the run lengths of every entry.
func (stts *TimeToSample) SampleCount() (n uint64) {
	for _, e := range stts.Entries {
		n += uint64(e.Count)
	}
	return
}

func decodeTimeToSample(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stts := &TimeToSample{BoxHeader: hdr}
	var err error
	if stts.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, LenTimeToSampleEntry); err != nil {
		return nil, err
	}
	b, _ := c.next(LenTimeToSampleEntry * count)
	stts.Entries = make([]TimeToSampleEntry, count)
	for i := range stts.Entries {
		stts.Entries[i].Count = pio.U32BE(b[8*i:])
		stts.Entries[i].Duration = pio.U32BE(b[8*i+4:])
	}
	return stts, nil
}

type CompositionOffset struct {
	BoxHeader
	FullBox
	Entries []CompositionOffsetEntry
}

type CompositionOffsetEntry struct {
	Count  uint32
	Offset int64 // unsigned in version 0, signed from version 1
}

const LenCompositionOffsetEntry = 8

func (ctts *CompositionOffset) GetEntryCount() int {
	return len(ctts.Entries)
}

func (ctts *CompositionOffset) GetCompositionOffset(i int) (CompositionOffsetEntry, error) {
	if err := checkIndex(i, len(ctts.Entries)); err != nil {
		return CompositionOffsetEntry{}, err
	}
	return ctts.Entries[i], nil
}

func decodeCompositionOffset(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	ctts := &CompositionOffset{BoxHeader: hdr}
	var err error
	if ctts.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, LenCompositionOffsetEntry); err != nil {
		return nil, err
	}
	b, _ := c.next(LenCompositionOffsetEntry * count)
	ctts.Entries = make([]CompositionOffsetEntry, count)
	for i := range ctts.Entries {
		ctts.Entries[i].Count = pio.U32BE(b[8*i:])
		if ctts.Version == 0 {
			ctts.Entries[i].Offset = int64(pio.U32BE(b[8*i+4:]))
		} else {
			ctts.Entries[i].Offset = int64(pio.I32BE(b[8*i+4:]))
		}
	}
	return ctts, nil
}

func init() {
	register(decodeTimeToSample, STTS)
	register(decodeCompositionOffset, CTTS)
}
