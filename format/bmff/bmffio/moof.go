package bmffio

const (
	MFHD = Tag(0x6d666864)
	TFHD = Tag(0x74666864)
	TFDT = Tag(0x74666474)
	TRUN = Tag(0x7472756e)
)

// tfhd flags
const (
	TFHDBaseDataOffset         = 0x000001
	TFHDSampleDescriptionIndex = 0x000002
	TFHDDefaultSampleDuration  = 0x000008
	TFHDDefaultSampleSize      = 0x000010
	TFHDDefaultSampleFlags     = 0x000020
	TFHDDurationIsEmpty        = 0x010000
	TFHDDefaultBaseIsMoof      = 0x020000
)

// trun flags
const (
	TRUNDataOffset                   = 0x000001
	TRUNFirstSampleFlags             = 0x000004
	TRUNSampleDuration               = 0x000100
	TRUNSampleSize                   = 0x000200
	TRUNSampleFlags                  = 0x000400
	TRUNSampleCompositionTimeOffsets = 0x000800
)

type MovieFragmentHeader struct {
	BoxHeader
	FullBox
	SequenceNumber uint32
}

func decodeMovieFragmentHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	mfhd := &MovieFragmentHeader{BoxHeader: hdr}
	var err error
	if mfhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if mfhd.SequenceNumber, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return mfhd, nil
}

// TrackFragmentHeader fields other than TrackID are only present when their flag is set.
type TrackFragmentHeader struct {
	BoxHeader
	FullBox
	TrackID                uint32
	BaseDataOffset         uint64
	SampleDescriptionIndex uint32
	DefaultSampleDuration  uint32
	DefaultSampleSize      uint32
	DefaultSampleFlags     uint32
}

func (tfhd *TrackFragmentHeader) GetTrackID() uint32 {
	return tfhd.TrackID
}

func decodeTrackFragmentHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	tfhd := &TrackFragmentHeader{BoxHeader: hdr}
	var err error
	if tfhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if tfhd.TrackID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if tfhd.Flags&TFHDBaseDataOffset != 0 {
		if tfhd.BaseDataOffset, err = c.ReadU64(); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		flag uint32
		v    *uint32
	}{
		{TFHDSampleDescriptionIndex, &tfhd.SampleDescriptionIndex},
		{TFHDDefaultSampleDuration, &tfhd.DefaultSampleDuration},
		{TFHDDefaultSampleSize, &tfhd.DefaultSampleSize},
		{TFHDDefaultSampleFlags, &tfhd.DefaultSampleFlags},
	} {
		if tfhd.Flags&f.flag == 0 {
			continue
		}
		if *f.v, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}
	return tfhd, nil
}

type TrackFragmentDecodeTime struct {
	BoxHeader
	FullBox
	BaseMediaDecodeTime uint64
}

func decodeTrackFragmentDecodeTime(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	tfdt := &TrackFragmentDecodeTime{BoxHeader: hdr}
	var err error
	if tfdt.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if tfdt.BaseMediaDecodeTime, err = c.ReadUintN(timeWidth(tfdt.Version)); err != nil {
		return nil, err
	}
	return tfdt, nil
}

type TrackFragmentRun struct {
	BoxHeader
	FullBox
	DataOffset       int32
	FirstSampleFlags uint32
	Entries          []TrackFragmentRunEntry
}

type TrackFragmentRunEntry struct {
	Duration uint32
	Size     uint32
	Flags    uint32
	Cts      int64
}

func (trun *TrackFragmentRun) GetEntryCount() int {
	return len(trun.Entries)
}

func (trun *TrackFragmentRun) GetSample(i int) (TrackFragmentRunEntry, error) {
	if err := checkIndex(i, len(trun.Entries)); err != nil {
		return TrackFragmentRunEntry{}, err
	}
	return trun.Entries[i], nil
}

func decodeTrackFragmentRun(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	trun := &TrackFragmentRun{BoxHeader: hdr}
	var err error
	if trun.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var count uint32
	if count, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if trun.Flags&TRUNDataOffset != 0 {
		if trun.DataOffset, err = c.ReadI32(); err != nil {
			return nil, err
		}
	}
	if trun.Flags&TRUNFirstSampleFlags != 0 {
		if trun.FirstSampleFlags, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}

	entrySize := 0
	for _, flag := range []uint32{TRUNSampleDuration, TRUNSampleSize, TRUNSampleFlags, TRUNSampleCompositionTimeOffsets} {
		if trun.Flags&flag != 0 {
			entrySize += 4
		}
	}
	if err = c.need(uint64(count) * uint64(entrySize)); err != nil {
		return nil, err
	}
	if entrySize == 0 && uint64(count) > uint64(c.Len())*8 {
		// no per-sample fields, so the count is capped relative to the box size
		return nil, &UnderrunError{Offset: c.Position(), Requested: uint64(count), Available: uint64(c.Remaining())}
	}

	trun.Entries = make([]TrackFragmentRunEntry, count)
	for i := range trun.Entries {
		e := &trun.Entries[i]
		if trun.Flags&TRUNSampleDuration != 0 {
			e.Duration, _ = c.ReadU32()
		}
		if trun.Flags&TRUNSampleSize != 0 {
			e.Size, _ = c.ReadU32()
		}
		if trun.Flags&TRUNSampleFlags != 0 {
			e.Flags, _ = c.ReadU32()
		}
		if trun.Flags&TRUNSampleCompositionTimeOffsets != 0 {
			v, _ := c.ReadU32()
			if trun.Version == 0 {
				e.Cts = int64(v)
			} else {
				e.Cts = int64(int32(v))
			}
		}
	}
	return trun, nil
}

func init() {
	register(decodeMovieFragmentHeader, MFHD)
	register(decodeTrackFragmentHeader, TFHD)
	register(decodeTrackFragmentDecodeTime, TFDT)
	register(decodeTrackFragmentRun, TRUN)
}
