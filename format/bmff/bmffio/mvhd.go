package bmffio

import (
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

const MVHD = Tag(0x6d766864)

type MovieHeader struct {
	BoxHeader
	FullBox
	CreateTime      time.Time // seconds since midnight, Jan 1, 1904, in UTC
	ModifyTime      time.Time
	TimeScale       uint32 // time units per second
	Duration        uint64 // in TimeScale units
	PreferredRate   float64
	PreferredVolume float64
	Matrix          [9]int32
	NextTrackID     uint32
}

func (mvhd *MovieHeader) GetTimescale() uint32 {
	return mvhd.TimeScale
}

func (mvhd *MovieHeader) GetDuration() uint64 {
	return mvhd.Duration
}

func (mvhd *MovieHeader) GetDurationTime() time.Duration {
	return ScaledDuration(mvhd.Duration, mvhd.TimeScale)
}

func decodeMovieHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	mvhd := &MovieHeader{BoxHeader: hdr}
	var err error
	if mvhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := timeWidth(mvhd.Version)
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	mvhd.CreateTime = Time1904(v)
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	mvhd.ModifyTime = Time1904(v)
	if mvhd.TimeScale, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if mvhd.Duration, err = c.ReadUintN(width); err != nil {
		return nil, err
	}

	var b []byte
	if b, err = c.next(4 + 2 + 10); err != nil {
		return nil, err
	}
	mvhd.PreferredRate = GetFixed32(b[0:])
	mvhd.PreferredVolume = GetFixed16(b[4:])
	if b, err = c.next(4 * len(mvhd.Matrix)); err != nil {
		return nil, err
	}
	for i := range mvhd.Matrix {
		mvhd.Matrix[i] = pio.I32BE(b[4*i:])
	}
	if err = c.Skip(24); err != nil {
		return nil, err
	}
	if mvhd.NextTrackID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return mvhd, nil
}

func init() {
	register(decodeMovieHeader, MVHD)
}
