// Package aac reads the MPEG-4 audio configuration carried in 'esds' boxes.
package aac

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/deepch/vdk/utils/bits"
	"github.com/deepch/vdk/utils/bits/pio"
)

// Audio object types, from libavcodec/mpeg4audio.h.
const (
	AotAacMain = 1
	AotAacLc   = 2
	AotAacSsr  = 3
	AotAacLtp  = 4
	AotSbr     = 5
	AotPs      = 29
	AotUsac    = 42
)

// ObjectTypeAudioISO14496 is the objectTypeIndication of MPEG-4 audio streams.
const ObjectTypeAudioISO14496 = 0x40

type MPEG4AudioConfig struct {
	SampleRate      int
	ObjectType      uint
	SampleRateIndex uint
	ChannelConfig   uint
}

func (config *MPEG4AudioConfig) IsValid() bool {
	return config.ObjectType > 0
}

func (config *MPEG4AudioConfig) Complete() {
	if config.SampleRateIndex < uint(len(sampleRateTable)) {
		config.SampleRate = sampleRateTable[config.SampleRateIndex]
	}
}

var sampleRateTable = []int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

func readObjectType(r *bits.Reader) (objectType uint, err error) {
	if objectType, err = r.ReadBits(5); err != nil {
		return
	}
	const escapeValue = 31
	if objectType == escapeValue {
		var i uint
		if i, err = r.ReadBits(6); err != nil {
			return
		}
		objectType = 32 + i
	}
	return
}

func readSampleRateIndex(r *bits.Reader) (index uint, err error) {
	if index, err = r.ReadBits(4); err != nil {
		return
	}
	if index == 0xf {
		if index, err = r.ReadBits(24); err != nil {
			return
		}
	}
	return
}

// ParseMPEG4AudioConfigBytes reads the leading fields of an AudioSpecificConfig.
func ParseMPEG4AudioConfigBytes(data []byte) (config MPEG4AudioConfig, err error) {
	if len(data) == 0 {
		return config, errors.New("aac: empty MPEG4 audio config data")
	}
	br := &bits.Reader{R: bytes.NewReader(data)}

	if config.ObjectType, err = readObjectType(br); err != nil {
		return config, fmt.Errorf("aac: object type: %w", err)
	}
	if config.SampleRateIndex, err = readSampleRateIndex(br); err != nil {
		return config, fmt.Errorf("aac: sample rate index: %w", err)
	}
	if config.ChannelConfig, err = br.ReadBits(4); err != nil {
		return config, fmt.Errorf("aac: channel config: %w", err)
	}
	config.Complete()
	return
}

// Descriptor tags of ISO/IEC 14496-1.
const (
	tagESDescriptor           = 0x03
	tagDecoderConfigDescr     = 0x04
	tagDecoderSpecificInfo    = 0x05
	minDecoderConfigDescrSize = 13
)

// ESDescriptor holds the fields of an ES_Descriptor needed to identify the stream.
// DecoderSpecificInfo aliases the unmarshalled slice.
type ESDescriptor struct {
	ESID                 uint16
	ObjectTypeIndication uint8
	StreamType           uint8
	MaxBitrate           uint32
	AvgBitrate           uint32
	DecoderSpecificInfo  []byte
}

var ErrDescriptorInvalid = errors.New("aac: ES descriptor invalid")

// readDescriptor returns the tag and body of the descriptor at the start of b, and what follows it.
func readDescriptor(b []byte) (tag uint8, body, rest []byte, err error) {
	if len(b) < 2 {
		return 0, nil, nil, io.ErrUnexpectedEOF
	}
	tag = b[0]
	n := 1
	size := 0
	for i := 0; ; i++ {
		if i == 4 || n >= len(b) {
			return 0, nil, nil, ErrDescriptorInvalid
		}
		c := b[n]
		n++
		size = size<<7 | int(c&0x7f)
		if c&0x80 == 0 {
			break
		}
	}
	if len(b) < n+size {
		return 0, nil, nil, io.ErrUnexpectedEOF
	}
	return tag, b[n : n+size], b[n+size:], nil
}

// Unmarshal decodes an ES_Descriptor, i.e. an 'esds' payload after version and flags.
func (d *ESDescriptor) Unmarshal(b []byte) error {
	tag, body, _, err := readDescriptor(b)
	if err != nil {
		return err
	}
	if tag != tagESDescriptor || len(body) < 3 {
		return ErrDescriptorInvalid
	}
	d.ESID = pio.U16BE(body)
	flags := body[2]
	body = body[3:]
	if flags&0x80 != 0 {
		if len(body) < 2 {
			return ErrDescriptorInvalid
		}
		body = body[2:]
	}
	if flags&0x40 != 0 {
		if len(body) < 1 || len(body) < 1+int(body[0]) {
			return ErrDescriptorInvalid
		}
		body = body[1+int(body[0]):]
	}
	if flags&0x20 != 0 {
		if len(body) < 2 {
			return ErrDescriptorInvalid
		}
		body = body[2:]
	}

	for len(body) > 0 {
		var sub []byte
		if tag, sub, body, err = readDescriptor(body); err != nil {
			return err
		}
		if tag != tagDecoderConfigDescr {
			continue
		}
		if len(sub) < minDecoderConfigDescrSize {
			return ErrDescriptorInvalid
		}
		d.ObjectTypeIndication = sub[0]
		d.StreamType = sub[1] >> 2
		d.MaxBitrate = pio.U32BE(sub[5:])
		d.AvgBitrate = pio.U32BE(sub[9:])
		for sub = sub[minDecoderConfigDescrSize:]; len(sub) > 0; {
			var info []byte
			if tag, info, sub, err = readDescriptor(sub); err != nil {
				return err
			}
			if tag == tagDecoderSpecificInfo {
				d.DecoderSpecificInfo = info
				break
			}
		}
		return nil
	}
	return ErrDescriptorInvalid
}

// CodecString returns the RFC 6381 codecs parameter, e.g. "mp4a.40.2". The audio object
// type is appended only for MPEG-4 audio with a readable AudioSpecificConfig.
func (d *ESDescriptor) CodecString(sampleEntry string) string {
	s := fmt.Sprintf("%s.%02x", sampleEntry, d.ObjectTypeIndication)
	if d.ObjectTypeIndication != ObjectTypeAudioISO14496 {
		return s
	}
	if config, err := ParseMPEG4AudioConfigBytes(d.DecoderSpecificInfo); err == nil && config.IsValid() {
		s += fmt.Sprintf(".%d", config.ObjectType)
	}
	return s
}
