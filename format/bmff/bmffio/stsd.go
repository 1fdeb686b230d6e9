package bmffio

import (
	"math"

	"github.com/deepch/vdk/utils/bits/pio"
)

const STSD = Tag(0x73747364)

// Visual sample entry types.
const (
	AVC1 = Tag(0x61766331)
	AVC3 = Tag(0x61766333)
	HVC1 = Tag(0x68766331)
	HEV1 = Tag(0x68657631)
	MP4V = Tag(0x6d703476)
	JPEG = Tag(0x6a706567)
	MJPA = Tag(0x6d6a7061)
	MJPG = Tag(0x6d6a7067)
	ENCV = Tag(0x656e6376)
	AV01 = Tag(0x61763031)
	VP09 = Tag(0x76703039)
)

// Audio sample entry types.
const (
	MP4A = Tag(0x6d703461)
	ENCA = Tag(0x656e6361)
	AC3  = Tag(0x61632d33)
	EC3  = Tag(0x65632d33)
	OPUS = Tag(0x4f707573)
	ALAC = Tag(0x616c6163)
	FLAC = Tag(0x664c6143)
)

// Codec configuration records kept as raw bytes.
const (
	AVCC = Tag(0x61766343)
	HVCC = Tag(0x68766343)
	ESDS = Tag(0x65736473)
)

// SampleDescription is the 'stsd' table. Each entry is a sample entry box.
type SampleDescription struct {
	BoxHeader
	FullBox
	EntryCount uint32
	BoxList
}

func (stsd *SampleDescription) Children() []Box {
	return stsd.BoxList
}

func (stsd *SampleDescription) GetEntryCount() int {
	return int(stsd.EntryCount)
}

func decodeSampleDescription(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	stsd := &SampleDescription{BoxHeader: hdr}
	var err error
	if stsd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if stsd.EntryCount, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if stsd.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return stsd, nil
}

const lenVisualSampleEntry = 78

type VisualSampleEntry struct {
	BoxHeader
	DataRefIdx           uint16
	Version              uint16
	Revision             uint16
	Vendor               uint32
	TemporalQuality      uint32
	SpatialQuality       uint32
	Width                uint16
	Height               uint16
	HorizontalResolution float64
	VerticalResolution   float64
	FrameCount           uint16
	CompressorName       string
	Depth                uint16
	ColorTableID         int16
	BoxList
}

func (v *VisualSampleEntry) Children() []Box {
	return v.BoxList
}

func decodeVisualSampleEntry(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	v := &VisualSampleEntry{BoxHeader: hdr}
	b, err := c.next(lenVisualSampleEntry)
	if err != nil {
		return nil, err
	}
	v.DataRefIdx = pio.U16BE(b[6:])
	v.Version = pio.U16BE(b[8:])
	v.Revision = pio.U16BE(b[10:])
	v.Vendor = pio.U32BE(b[12:])
	v.TemporalQuality = pio.U32BE(b[16:])
	v.SpatialQuality = pio.U32BE(b[20:])
	v.Width = pio.U16BE(b[24:])
	v.Height = pio.U16BE(b[26:])
	v.HorizontalResolution = GetFixed32(b[28:])
	v.VerticalResolution = GetFixed32(b[32:])
	v.FrameCount = pio.U16BE(b[40:])
	v.CompressorName = pascalString(b[42:74])
	v.Depth = pio.U16BE(b[74:])
	v.ColorTableID = pio.I16BE(b[76:])
	if v.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return v, nil
}

const lenAudioSampleEntry = 28

// AudioSampleEntry covers the ISO layout and the QuickTime sound description versions 1
// and 2, which append fields selected by Version.
type AudioSampleEntry struct {
	BoxHeader
	DataRefIdx       uint16
	Version          uint16
	Revision         uint16
	Vendor           uint32
	NumberOfChannels uint16
	SampleSize       uint16
	CompressionID    int16
	PacketSize       uint16
	SampleRate       float64

	// version 1
	SamplesPerPacket uint32
	BytesPerPacket   uint32
	BytesPerFrame    uint32
	BytesPerSample   uint32

	// version 2
	LPCMFlags            uint32
	BytesPerAudioPacket  uint32
	FramesPerAudioPacket uint32

	BoxList
}

func (a *AudioSampleEntry) Children() []Box {
	return a.BoxList
}

func decodeAudioSampleEntry(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	a := &AudioSampleEntry{BoxHeader: hdr}
	b, err := c.next(lenAudioSampleEntry)
	if err != nil {
		return nil, err
	}
	a.DataRefIdx = pio.U16BE(b[6:])
	a.Version = pio.U16BE(b[8:])
	a.Revision = pio.U16BE(b[10:])
	a.Vendor = pio.U32BE(b[12:])
	a.NumberOfChannels = pio.U16BE(b[16:])
	a.SampleSize = pio.U16BE(b[18:])
	a.CompressionID = pio.I16BE(b[20:])
	a.PacketSize = pio.U16BE(b[22:])
	a.SampleRate = GetFixed32(b[24:])

	switch a.Version {
	case 1:
		if b, err = c.next(16); err != nil {
			return nil, err
		}
		a.SamplesPerPacket = pio.U32BE(b[0:])
		a.BytesPerPacket = pio.U32BE(b[4:])
		a.BytesPerFrame = pio.U32BE(b[8:])
		a.BytesPerSample = pio.U32BE(b[12:])
	case 2:
		if b, err = c.next(36); err != nil {
			return nil, err
		}
		a.SampleRate = math.Float64frombits(pio.U64BE(b[4:]))
		a.NumberOfChannels = uint16(pio.U32BE(b[12:]))
		a.SampleSize = uint16(pio.U32BE(b[20:]))
		a.LPCMFlags = pio.U32BE(b[24:])
		a.BytesPerAudioPacket = pio.U32BE(b[28:])
		a.FramesPerAudioPacket = pio.U32BE(b[32:])
	}
	if a.BoxList, err = p.ReadBoxesWith(c, decodeAudioSampleEntryChild); err != nil {
		return nil, err
	}
	return a, nil
}

// decodeAudioSampleEntryChild decodes a box nested in an audio sample entry, where 'alac' is
// the ALAC magic cookie and not another sample entry.
func decodeAudioSampleEntryChild(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	if hdr.Type == ALAC {
		return decodeCodecConfig(p, hdr, c)
	}
	return p.registry.Resolve(hdr.Type)(p, hdr, c)
}

// CodecConfig keeps a decoder configuration record such as 'avcC' verbatim.
type CodecConfig struct {
	BoxHeader
	Data []byte
}

func decodeCodecConfig(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	data, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	return &CodecConfig{BoxHeader: hdr, Data: data}, nil
}

// ElemStreamDesc is the 'esds' box. Its descriptor payload follows the version and flags.
type ElemStreamDesc struct {
	BoxHeader
	FullBox
	Data []byte
}

func decodeElemStreamDesc(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	esds := &ElemStreamDesc{BoxHeader: hdr}
	var err error
	if esds.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if esds.Data, err = c.ReadBytes(c.Remaining()); err != nil {
		return nil, err
	}
	return esds, nil
}

func init() {
	register(decodeSampleDescription, STSD)
	register(decodeVisualSampleEntry, AVC1, AVC3, HVC1, HEV1, MP4V, JPEG, MJPA, MJPG, ENCV, AV01, VP09)
	register(decodeAudioSampleEntry, MP4A, ENCA, AC3, EC3, OPUS, ALAC, FLAC)
	register(decodeCodecConfig, AVCC, HVCC)
	register(decodeElemStreamDesc, ESDS)
}
