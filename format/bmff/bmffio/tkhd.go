package bmffio

import (
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

const TKHD = Tag(0x746b6864)

const (
	TrackEnabled   = 0x000001
	TrackInMovie   = 0x000002
	TrackInPreview = 0x000004
)

type TrackHeader struct {
	BoxHeader
	FullBox
	CreateTime     time.Time
	ModifyTime     time.Time
	TrackID        uint32
	Duration       uint64 // in movie timescale units
	Layer          int16
	AlternateGroup int16
	Volume         float64
	Matrix         [9]int32
	TrackWidth     float64
	TrackHeight    float64
}

func (tkhd *TrackHeader) GetTrackID() uint32 {
	return tkhd.TrackID
}

func (tkhd *TrackHeader) GetDuration() uint64 {
	return tkhd.Duration
}

func (tkhd *TrackHeader) IsEnabled() bool {
	return tkhd.Flags&TrackEnabled != 0
}

func decodeTrackHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	tkhd := &TrackHeader{BoxHeader: hdr}
	var err error
	if tkhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := timeWidth(tkhd.Version)
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	tkhd.CreateTime = Time1904(v)
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	tkhd.ModifyTime = Time1904(v)
	if tkhd.TrackID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if err = c.Skip(4); err != nil {
		return nil, err
	}
	if tkhd.Duration, err = c.ReadUintN(width); err != nil {
		return nil, err
	}

	var b []byte
	if b, err = c.next(8 + 2 + 2 + 2 + 2); err != nil {
		return nil, err
	}
	tkhd.Layer = pio.I16BE(b[8:])
	tkhd.AlternateGroup = pio.I16BE(b[10:])
	tkhd.Volume = GetFixed16(b[12:])
	if b, err = c.next(4*len(tkhd.Matrix) + 8); err != nil {
		return nil, err
	}
	for i := range tkhd.Matrix {
		tkhd.Matrix[i] = pio.I32BE(b[4*i:])
	}
	tkhd.TrackWidth = GetFixed32(b[36:])
	tkhd.TrackHeight = GetFixed32(b[40:])
	return tkhd, nil
}

func init() {
	register(decodeTrackHeader, TKHD)
}
