package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const STSC = Tag(0x73747363)

type SampleToChunk struct {
	BoxHeader
	FullBox
	Entries []SampleToChunkEntry
}

type SampleToChunkEntry struct {
	FirstChunk          uint32 // 1-based
	SamplesPerChunk     uint32
	SampleDescriptionID uint32
}

const LenSampleToChunkEntry = 12

func GetSampleToChunkEntry(b []byte) (self SampleToChunkEntry) {
	self.FirstChunk = pio.U32BE(b[0:])
	self.SamplesPerChunk = pio.U32BE(b[4:])
	self.SampleDescriptionID = pio.U32BE(b[8:])
	return
}

func (stsc *SampleToChunk) GetEntryCount() int {
	return len(stsc.Entries)
}

func (stsc *SampleToChunk) GetSampleToChunk(i int) (SampleToChunkEntry, error) {
	if err := checkIndex(i, len(stsc.Entries)); err != nil {
		return SampleToChunkEntry{}, err
	}
	return stsc.Entries[i], nil
}

func decodeSampleToChunk(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stsc := &SampleToChunk{BoxHeader: hdr}
	var err error
	if stsc.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, LenSampleToChunkEntry); err != nil {
		return nil, err
	}
	b, _ := c.next(LenSampleToChunkEntry * count)
	stsc.Entries = make([]SampleToChunkEntry, count)
	for i := range stsc.Entries {
		stsc.Entries[i] = GetSampleToChunkEntry(b[LenSampleToChunkEntry*i:])
	}
	return stsc, nil
}

func init() {
	register(decodeSampleToChunk, STSC)
}
