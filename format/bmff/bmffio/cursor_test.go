package bmffio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_Reads(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
	}, 100)

	u8, err := c.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	u16, err := c.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), u16)

	u24, err := c.ReadU24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x040506), u24)

	require.Equal(t, int64(106), c.Position())

	u32, err := c.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x0708090a), u32)

	u64, err := c.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(256), u64)

	require.Equal(t, 0, c.Remaining())
	require.Equal(t, 18, c.Consumed())
}

func TestCursor_Underrun(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{1, 2, 3}, 40)
	_, err := c.ReadU32()

	var under *UnderrunError
	require.True(t, errors.As(err, &under))
	require.Equal(t, int64(40), under.Offset)
	require.Equal(t, uint64(4), under.Requested)
	require.Equal(t, uint64(3), under.Available)

	// failed reads leave the cursor where it was
	require.Equal(t, 3, c.Remaining())
	v, err := c.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), v)
}

func TestCursor_ReadUintN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		width int
		in    []byte
		want  uint64
	}{
		{name: "zero_width", width: 0, in: nil, want: 0},
		{name: "one", width: 1, in: []byte{0xff}, want: 0xff},
		{name: "two", width: 2, in: []byte{0x12, 0x34}, want: 0x1234},
		{name: "four", width: 4, in: []byte{0, 0, 0x10, 0}, want: 0x1000},
		{name: "eight", width: 8, in: []byte{1, 0, 0, 0, 0, 0, 0, 0}, want: 1 << 56},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewCursor(tt.in, 0)
			v, err := c.ReadUintN(tt.width)
			require.NoError(t, err)
			require.Equal(t, tt.want, v)
			require.Equal(t, 0, c.Remaining())
		})
	}

	_, err := NewCursor([]byte{1, 2, 3, 4, 5}, 0).ReadUintN(5)
	require.Error(t, err)
}

func TestCursor_Strings(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte("abc\x00def\x00\x00ghi"), 0)
	s, err := c.ReadFixedString(5)
	require.NoError(t, err)
	require.Equal(t, "abc\x00d", s)

	require.Equal(t, "ef", c.ReadCString())
	require.Equal(t, "", c.ReadCString())
	// no terminator: the rest of the range is the string
	require.Equal(t, "ghi", c.ReadCString())
	require.Equal(t, 0, c.Remaining())

	c = NewCursor([]byte("name\x00\x00\x00"), 0)
	s, err = c.ReadFixedString(7)
	require.NoError(t, err)
	require.Equal(t, "name", s)
}

func TestCursor_Scope(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 1000)
	require.NoError(t, c.Skip(2))

	sub, err := c.Scope(4)
	require.NoError(t, err)
	require.Equal(t, int64(1002), sub.Position())
	require.Equal(t, 4, sub.Len())
	require.Equal(t, 2, c.Remaining())

	_, err = sub.ReadU64()
	var under *UnderrunError
	require.ErrorAs(t, err, &under)
	require.Equal(t, uint64(4), under.Available)

	v, err := sub.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0304), v)
	require.Equal(t, 2, sub.SkipAll())

	_, err = c.Scope(3)
	require.ErrorAs(t, err, &under)
}

func TestCursor_ReadBytesCopies(t *testing.T) {
	t.Parallel()

	src := []byte{1, 2, 3}
	c := NewCursor(src, 0)
	b, err := c.ReadBytes(3)
	require.NoError(t, err)
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3}, b)
}
