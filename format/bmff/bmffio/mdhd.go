package bmffio

import "time"

const MDHD = Tag(0x6d646864)

type MediaHeader struct {
	BoxHeader
	FullBox
	CreateTime time.Time
	ModifyTime time.Time
	TimeScale  uint32
	Duration   uint64
	Language   string // ISO-639-2/T code
	Quality    uint16
}

func (mdhd *MediaHeader) GetTimescale() uint32 {
	return mdhd.TimeScale
}

func (mdhd *MediaHeader) GetDuration() uint64 {
	return mdhd.Duration
}

func (mdhd *MediaHeader) GetDurationTime() time.Duration {
	return ScaledDuration(mdhd.Duration, mdhd.TimeScale)
}

// unpackLanguage expands three 5-bit letters offset from 0x60.
func unpackLanguage(v uint16) string {
	if v&0x7fff == 0 {
		return ""
	}
	return string([]byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	})
}

func decodeMediaHeader(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	mdhd := &MediaHeader{BoxHeader: hdr}
	var err error
	if mdhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := timeWidth(mdhd.Version)
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	mdhd.CreateTime = Time1904(v)
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	mdhd.ModifyTime = Time1904(v)
	if mdhd.TimeScale, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if mdhd.Duration, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	var lang uint16
	if lang, err = c.ReadU16(); err != nil {
		return nil, err
	}
	mdhd.Language = unpackLanguage(lang)
	if mdhd.Quality, err = c.ReadU16(); err != nil {
		return nil, err
	}
	return mdhd, nil
}

func init() {
	register(decodeMediaHeader, MDHD)
}
