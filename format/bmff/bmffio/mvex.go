package bmffio

const (
	MEHD = Tag(0x6d656864)
	TREX = Tag(0x74726578)
)

// MovieExtendsHeader carries the overall duration of a fragmented movie.
type MovieExtendsHeader struct {
	BoxHeader
	FullBox
	FragmentDuration uint64
}

func (mehd *MovieExtendsHeader) GetDuration() uint64 {
	return mehd.FragmentDuration
}

func decodeMovieExtendsHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	mehd := &MovieExtendsHeader{BoxHeader: hdr}
	var err error
	if mehd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if mehd.FragmentDuration, err = c.ReadUintN(timeWidth(mehd.Version)); err != nil {
		return nil, err
	}
	return mehd, nil
}

// TrackExtend holds the per-track defaults used by movie fragments.
type TrackExtend struct {
	BoxHeader
	FullBox
	TrackID                       uint32
	DefaultSampleDescriptionIndex uint32
	DefaultSampleDuration         uint32
	DefaultSampleSize             uint32
	DefaultSampleFlags            uint32
}

func (trex *TrackExtend) GetTrackID() uint32 {
	return trex.TrackID
}

func decodeTrackExtend(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	trex := &TrackExtend{BoxHeader: hdr}
	var err error
	if trex.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	for _, v := range []*uint32{
		&trex.TrackID,
		&trex.DefaultSampleDescriptionIndex,
		&trex.DefaultSampleDuration,
		&trex.DefaultSampleSize,
		&trex.DefaultSampleFlags,
	} {
		if *v, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}
	return trex, nil
}

func init() {
	register(decodeMovieExtendsHeader, MEHD)
	register(decodeTrackExtend, TREX)
}
