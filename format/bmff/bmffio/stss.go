package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const STSS = Tag(0x73747373)

// SyncSample lists the 1-based numbers of random access samples.
type SyncSample struct {
	BoxHeader
	FullBox
	Entries []uint32
}

func (stss *SyncSample) GetEntryCount() int {
	return len(stss.Entries)
}

func (stss *SyncSample) GetSyncSample(i int) (uint32, error) {
	if err := checkIndex(i, len(stss.Entries)); err != nil {
		return 0, err
	}
	return stss.Entries[i], nil
}

func decodeSyncSample(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stss := &SyncSample{BoxHeader: hdr}
	var err error
	if stss.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count int
	if count, err = readEntryCount(c, 4); err != nil {
		return nil, err
	}
	b, _ := c.next(4 * count)
	stss.Entries = make([]uint32, count)
	for i := range stss.Entries {
		stss.Entries[i] = pio.U32BE(b[4*i:])
	}
	return stss, nil
}

func init() {
	register(decodeSyncSample, STSS)
}
