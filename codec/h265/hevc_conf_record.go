// Package h265 reads the HEVC decoder configuration carried in 'hvcC' boxes.
package h265

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/deepch/vdk/utils/bits/pio"
)

var ErrDecconfInvalid = errors.New("h265: HEVCDecoderConfRecord invalid")

const minHEVCRecordSize = 23

// NAL unit types found in parameter set arrays.
const (
	NaluVPS = 32
	NaluSPS = 33
	NaluPPS = 34
)

// HEVCDecoderConfRecord is the HEVCDecoderConfigurationRecord of ISO/IEC 14496-15.
// Parameter sets alias the unmarshalled slice.
type HEVCDecoderConfRecord struct {
	ConfigurationVersion             uint8
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  [6]byte
	GeneralLevelIDC                  uint8
	ChromaFormat                     uint8
	BitDepthLumaMinus8               uint8
	BitDepthChromaMinus8             uint8
	LengthSizeMinusOne               uint8
	VPS                              [][]byte
	SPS                              [][]byte
	PPS                              [][]byte
}

// Unmarshal decodes the record from b and returns the number of bytes read. NAL units of
// types other than VPS, SPS and PPS are skipped.
func (hevc *HEVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < minHEVCRecordSize {
		err = ErrDecconfInvalid
		return
	}
	hevc.ConfigurationVersion = b[0]
	hevc.GeneralProfileSpace = b[1] >> 6
	hevc.GeneralTierFlag = b[1]&0x20 != 0
	hevc.GeneralProfileIDC = b[1] & 0x1f
	hevc.GeneralProfileCompatibilityFlags = pio.U32BE(b[2:])
	copy(hevc.GeneralConstraintIndicatorFlags[:], b[6:12])
	hevc.GeneralLevelIDC = b[12]
	hevc.ChromaFormat = b[16] & 0x03
	hevc.BitDepthLumaMinus8 = b[17] & 0x07
	hevc.BitDepthChromaMinus8 = b[18] & 0x07
	hevc.LengthSizeMinusOne = b[21] & 0x03

	arrays := int(b[22])
	n = minHEVCRecordSize
	for i := 0; i < arrays; i++ {
		if len(b) < n+3 {
			err = ErrDecconfInvalid
			return
		}
		typ := b[n] & 0x3f
		count := int(pio.U16BE(b[n+1:]))
		n += 3

		for j := 0; j < count; j++ {
			if len(b) < n+2 {
				err = ErrDecconfInvalid
				return
			}
			size := int(pio.U16BE(b[n:]))
			n += 2
			if len(b) < n+size {
				err = ErrDecconfInvalid
				return
			}
			nalu := b[n : n+size]
			n += size

			switch typ {
			case NaluVPS:
				hevc.VPS = append(hevc.VPS, nalu)
			case NaluSPS:
				hevc.SPS = append(hevc.SPS, nalu)
			case NaluPPS:
				hevc.PPS = append(hevc.PPS, nalu)
			}
		}
	}
	return
}

// CodecString returns the RFC 6381 codecs parameter, e.g. "hvc1.1.6.L93.B0".
func (hevc *HEVCDecoderConfRecord) CodecString(sampleEntry string) string {
	var sb strings.Builder
	sb.WriteString(sampleEntry)
	sb.WriteByte('.')
	if hevc.GeneralProfileSpace > 0 {
		sb.WriteByte('A' + hevc.GeneralProfileSpace - 1)
	}
	fmt.Fprintf(&sb, "%d.%X.", hevc.GeneralProfileIDC, bits.Reverse32(hevc.GeneralProfileCompatibilityFlags))
	if hevc.GeneralTierFlag {
		sb.WriteByte('H')
	} else {
		sb.WriteByte('L')
	}
	fmt.Fprintf(&sb, "%d", hevc.GeneralLevelIDC)

	constraints := hevc.GeneralConstraintIndicatorFlags[:]
	for len(constraints) > 0 && constraints[len(constraints)-1] == 0 {
		constraints = constraints[:len(constraints)-1]
	}
	for _, c := range constraints {
		fmt.Fprintf(&sb, ".%X", c)
	}
	return sb.String()
}
