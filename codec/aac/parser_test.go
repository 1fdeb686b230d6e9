package aac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// esds payload for AAC-LC, 44.1 kHz stereo
var lcDescriptor = []byte{
	0x03, 0x19, 0x00, 0x01, 0x00,
	0x04, 0x11, 0x40, 0x15, 0x00, 0x00, 0x00, 0x00, 0x01, 0xf4, 0x00, 0x00, 0x01, 0xf4, 0x00,
	0x05, 0x02, 0x12, 0x10,
	0x06, 0x01, 0x02,
}

func TestParseMPEG4AudioConfigBytes(t *testing.T) {
	t.Parallel()

	config, err := ParseMPEG4AudioConfigBytes([]byte{0x12, 0x10})
	require.NoError(t, err)
	require.Equal(t, uint(AotAacLc), config.ObjectType)
	require.Equal(t, 44100, config.SampleRate)
	require.Equal(t, uint(2), config.ChannelConfig)

	// escaped object type 42 at 48 kHz mono
	config, err = ParseMPEG4AudioConfigBytes([]byte{0xf9, 0x46, 0x20})
	require.NoError(t, err)
	require.Equal(t, uint(AotUsac), config.ObjectType)
	require.Equal(t, 48000, config.SampleRate)
	require.Equal(t, uint(1), config.ChannelConfig)

	_, err = ParseMPEG4AudioConfigBytes(nil)
	require.Error(t, err)
	_, err = ParseMPEG4AudioConfigBytes([]byte{0x12})
	require.Error(t, err)
}

func TestESDescriptor(t *testing.T) {
	t.Parallel()

	var d ESDescriptor
	require.NoError(t, d.Unmarshal(lcDescriptor))
	require.Equal(t, uint16(1), d.ESID)
	require.Equal(t, uint8(ObjectTypeAudioISO14496), d.ObjectTypeIndication)
	require.Equal(t, uint8(5), d.StreamType)
	require.Equal(t, uint32(128000), d.MaxBitrate)
	require.Equal(t, []byte{0x12, 0x10}, d.DecoderSpecificInfo)
	require.Equal(t, "mp4a.40.2", d.CodecString("mp4a"))

	// multi-byte size encoding
	long := append([]byte{0x03, 0x80, 0x80, 0x19}, lcDescriptor[2:]...)
	d = ESDescriptor{}
	require.NoError(t, d.Unmarshal(long))
	require.Equal(t, "mp4a.40.2", d.CodecString("mp4a"))

	mp3 := ESDescriptor{ObjectTypeIndication: 0x6b}
	require.Equal(t, "mp4a.6b", mp3.CodecString("mp4a"))
}

func TestESDescriptor_Invalid(t *testing.T) {
	t.Parallel()

	for _, b := range [][]byte{
		nil,
		{0x04, 0x00},
		{0x03, 0x80, 0x80, 0x80, 0x80, 0x01},
		lcDescriptor[:10],
		{0x03, 0x03, 0x00, 0x01, 0x00},
	} {
		var d ESDescriptor
		require.Error(t, d.Unmarshal(b), "% x", b)
	}
}
