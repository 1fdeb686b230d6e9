// Package h264 reads the AVC decoder configuration carried in 'avcC' boxes.
package h264

import (
	"errors"
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

var ErrDecconfInvalid = errors.New("h264: AVCDecoderConfRecord invalid")

const (
	minAVCRecordSize       = 7
	maskLengthSizeMinusOne = 0x03
	maskSPSCount           = 0x1f
)

// AVCDecoderConfRecord is the AVCDecoderConfigurationRecord of ISO/IEC 14496-15.
// Parameter sets alias the unmarshalled slice.
type AVCDecoderConfRecord struct {
	ConfigurationVersion uint8
	AVCProfileIndication uint8
	ProfileCompatibility uint8
	AVCLevelIndication   uint8
	LengthSizeMinusOne   uint8
	SPS                  [][]byte
	PPS                  [][]byte
}

// Unmarshal decodes the record from b and returns the number of bytes read. Profile
// extensions after the parameter sets are not read.
func (avc *AVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < minAVCRecordSize {
		err = ErrDecconfInvalid
		return
	}

	avc.ConfigurationVersion = b[0]
	avc.AVCProfileIndication = b[1]
	avc.ProfileCompatibility = b[2]
	avc.AVCLevelIndication = b[3]
	avc.LengthSizeMinusOne = b[4] & maskLengthSizeMinusOne
	spscount := int(b[5] & maskSPSCount)
	n += 6

	if avc.SPS, n, err = readParameterSets(b, n, spscount); err != nil {
		return
	}

	if len(b) < n+1 {
		err = ErrDecconfInvalid
		return
	}
	ppscount := int(b[n])
	n++

	avc.PPS, n, err = readParameterSets(b, n, ppscount)
	return
}

func readParameterSets(b []byte, n, count int) (sets [][]byte, _ int, err error) {
	for i := 0; i < count; i++ {
		if len(b) < n+2 {
			return nil, n, ErrDecconfInvalid
		}
		size := int(pio.U16BE(b[n:]))
		n += 2

		if len(b) < n+size {
			return nil, n, ErrDecconfInvalid
		}
		sets = append(sets, b[n:n+size])
		n += size
	}
	return sets, n, nil
}

// CodecString returns the RFC 6381 codecs parameter, e.g. "avc1.64001f".
func (avc *AVCDecoderConfRecord) CodecString(sampleEntry string) string {
	return fmt.Sprintf("%s.%02x%02x%02x", sampleEntry,
		avc.AVCProfileIndication, avc.ProfileCompatibility, avc.AVCLevelIndication)
}
