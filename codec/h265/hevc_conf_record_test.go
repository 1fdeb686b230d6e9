package h265

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func record(arrays ...byte) []byte {
	return append([]byte{
		0x01, 0x01,
		0x60, 0x00, 0x00, 0x00,
		0xb0, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x5d, 0xf0, 0x00, 0xfc, 0xfd, 0xf8, 0xf8, 0x00, 0x00, 0x0f,
	}, arrays...)
}

func TestHEVCDecoderConfRecord_Unmarshal(t *testing.T) {
	t.Parallel()

	b := record(
		0x02,
		0x20, 0x00, 0x01, 0x00, 0x02, 0x40, 0x01,
		0x27, 0x00, 0x01, 0x00, 0x01, 0x4e,
	)
	var rec HEVCDecoderConfRecord
	n, err := rec.Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, uint8(1), rec.GeneralProfileIDC)
	require.Equal(t, uint8(93), rec.GeneralLevelIDC)
	require.Equal(t, uint8(1), rec.ChromaFormat)
	require.Equal(t, uint8(3), rec.LengthSizeMinusOne)
	require.Equal(t, [][]byte{{0x40, 0x01}}, rec.VPS)
	require.Empty(t, rec.SPS)
	require.Equal(t, "hvc1.1.6.L93.B0", rec.CodecString("hvc1"))

	rec.GeneralProfileSpace = 1
	rec.GeneralTierFlag = true
	rec.GeneralConstraintIndicatorFlags = [6]byte{0x90, 0, 0x10}
	require.Equal(t, "hev1.A1.6.H93.90.0.10", rec.CodecString("hev1"))
}

func TestHEVCDecoderConfRecord_Truncated(t *testing.T) {
	t.Parallel()

	for _, b := range [][]byte{
		record()[:10],
		record(0x01, 0x21),
		record(0x01, 0x21, 0x00, 0x01, 0x00, 0x05, 0x42),
	} {
		var rec HEVCDecoderConfRecord
		_, err := rec.Unmarshal(b)
		require.ErrorIs(t, err, ErrDecconfInvalid)
	}
}
