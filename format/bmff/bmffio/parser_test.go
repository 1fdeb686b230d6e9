package bmffio

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	bt "github.com/ugparu/isobmff/format/bmff/bmfftest"
)

func nested(typ string, depth int, leaf []byte) []byte {
	b := leaf
	for i := 0; i < depth; i++ {
		b = bt.Box(typ, b)
	}
	return b
}

func TestParse_HeaderForms(t *testing.T) {
	t.Parallel()

	payload := []byte{1, 2, 3, 4, 5}
	tests := []struct {
		name       string
		in         []byte
		headerSize int
	}{
		{name: "compact_size", in: bt.Box("zzzz", payload), headerSize: HeaderSize},
		{name: "large_size", in: bt.LargeBox("zzzz", payload), headerSize: LargeHeaderSize},
		{name: "size_to_end", in: bt.OpenBox("zzzz", payload), headerSize: HeaderSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := Parse(tt.in)
			require.NoError(t, err)
			require.Len(t, f.Children(), 1)

			box, ok := GetTypedBox[*OpaqueBox](f, StringToTag("zzzz"))
			require.True(t, ok)
			require.Equal(t, tt.headerSize, box.HeaderSize)
			require.Equal(t, uint64(len(tt.in)), box.Size)
			require.Equal(t, uint64(len(payload)), box.PayloadSize())
			require.Equal(t, payload, box.Data)
			require.Equal(t, int64(0), box.Offset)
			require.Equal(t, 0, box.Trailing)
		})
	}
}

func TestParse_SizeToEndOfContainer(t *testing.T) {
	t.Parallel()

	first := bt.Box("aaaa", []byte{9, 9})
	open := bt.OpenBox("zzzz", []byte{1, 2, 3})
	in := bt.Cat(bt.Box("moov", first, open), bt.Box("free", bt.Zeros(4)))

	f, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, f.Children(), 2)

	moov := f.GetBox(MOOV)
	require.NotNil(t, moov)
	require.Len(t, moov.Children(), 2)

	box, ok := moov.Children()[1].(*OpaqueBox)
	require.True(t, ok)
	require.Equal(t, StringToTag("zzzz"), box.Type)
	require.Equal(t, int64(HeaderSize+len(first)), box.Offset)
	require.Equal(t, moov.Header().PayloadSize()-uint64(len(first)), box.Size)
	require.Equal(t, uint64(len(open)), box.Size)
	require.Equal(t, []byte{1, 2, 3}, box.Data)

	free := f.Children()[1].Header()
	require.Equal(t, FREE, free.Type)
	require.Equal(t, int64(len(in)-12), free.Offset)
	require.Equal(t, uint64(12), free.Size)
}

func TestParse_LargeSizeMatchesCompact(t *testing.T) {
	t.Parallel()

	payload := []byte("payload")
	compact, err := Parse(bt.Box("zzzz", payload))
	require.NoError(t, err)
	large, err := Parse(bt.LargeBox("zzzz", payload))
	require.NoError(t, err)

	c, ok := GetTypedBox[*OpaqueBox](compact, StringToTag("zzzz"))
	require.True(t, ok)
	l, ok := GetTypedBox[*OpaqueBox](large, StringToTag("zzzz"))
	require.True(t, ok)

	require.Equal(t, c.Type, l.Type)
	require.Equal(t, c.PayloadSize(), l.PayloadSize())
	require.Equal(t, c.Data, l.Data)
	require.Equal(t, c.Size+LargeHeaderSize-HeaderSize, l.Size)
}

func TestParse_UUIDBox(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("a5d40b30-e814-11dd-ba2f-0800200c9a66")
	in := bt.Cat(bt.Box("free"), bt.UUIDBox(id, []byte("xmp")))

	f, err := Parse(in)
	require.NoError(t, err)

	box, ok := GetTypedBox[*OpaqueBox](f, UUID)
	require.True(t, ok)
	require.Equal(t, id, box.UserType)
	require.Equal(t, HeaderSize+UserTypeSize, box.HeaderSize)
	require.Equal(t, int64(8), box.Offset)
	require.Equal(t, []byte("xmp"), box.Data)
	require.Equal(t, "uuid", box.Tag().String())
}

func TestParse_UnknownTypeIsOpaque(t *testing.T) {
	t.Parallel()

	in := bt.Box("abcd", []byte{0xde, 0xad, 0xbe, 0xef})
	f, err := Parse(in)
	require.NoError(t, err)

	box, ok := f.GetBox(StringToTag("abcd")).(*OpaqueBox)
	require.True(t, ok)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, box.Data)
	require.Nil(t, box.Children())

	_, ok = GetTypedBox[*FileType](f, FTYP)
	require.False(t, ok)
	require.Nil(t, f.GetBox(FTYP))
	require.Empty(t, f.GetBoxes(FTYP))
}

func TestParse_TrailingBytesSkipped(t *testing.T) {
	t.Parallel()

	// an ispe with four extra bytes, followed by a sibling
	in := bt.Box("ipco",
		bt.FullBox("ispe", 0, 0, bt.U32(640), bt.U32(480), bt.U32(0xffffffff)),
		bt.FullBox("ispe", 0, 0, bt.U32(320), bt.U32(240)),
	)
	f, err := Parse(in)
	require.NoError(t, err)

	ipco := f.GetBox(IPCO).(*ContainerBox)
	props := GetTypedBoxes[*ImageSpatialExtents](ipco, ISPE)
	require.Len(t, props, 2)

	require.Equal(t, uint32(640), props[0].Width)
	require.Equal(t, 4, props[0].Trailing)
	require.Equal(t, uint64(props[0].HeaderSize+4+8+props[0].Trailing), props[0].Size)

	require.Equal(t, uint32(240), props[1].Height)
	require.Equal(t, 0, props[1].Trailing)
	require.Equal(t, int64(8+24), props[1].Offset)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	t.Run("size_beyond_scope", func(t *testing.T) {
		t.Parallel()
		in := bt.Cat(bt.U32(100), []byte("free"), bt.Zeros(8))
		_, err := Parse(in)

		var under *UnderrunError
		require.ErrorAs(t, err, &under)
		require.Equal(t, uint64(92), under.Requested)
		require.Equal(t, uint64(8), under.Available)
	})

	t.Run("size_below_header", func(t *testing.T) {
		t.Parallel()
		in := bt.Cat(bt.U32(4), []byte("free"))
		_, err := Parse(in)

		var bad *BoxSizeError
		require.ErrorAs(t, err, &bad)
		require.Equal(t, uint64(4), bad.Size)
		require.Equal(t, HeaderSize, bad.HeaderSize)
	})

	t.Run("entry_count_exceeds_payload", func(t *testing.T) {
		t.Parallel()
		in := bt.Box("moov", bt.Box("trak", bt.FullBox("stco", 0, 0, bt.U32(3), bt.U32(8), bt.U32(4096))))
		f, err := Parse(in)
		require.Nil(t, f)

		var under *UnderrunError
		require.ErrorAs(t, err, &under)
		require.Equal(t, uint64(12), under.Requested)
		require.Equal(t, uint64(8), under.Available)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, []string{"moov", "trak", "stco"}, perr.Path())
		require.Contains(t, err.Error(), "moov:0,trak:8,stco:16")
	})

	t.Run("adversarial_entry_count", func(t *testing.T) {
		t.Parallel()
		in := bt.FullBox("stsc", 0, 0, bt.U32(0xffffffff))
		_, err := Parse(in)

		var under *UnderrunError
		require.ErrorAs(t, err, &under)
	})

	t.Run("fixed_fields_past_end", func(t *testing.T) {
		t.Parallel()
		in := bt.FullBox("mvhd", 0, 0, bt.U32(0), bt.U32(0), bt.U32(1000))
		_, err := Parse(in)

		var under *UnderrunError
		require.ErrorAs(t, err, &under)
	})

	t.Run("leftover_garbage", func(t *testing.T) {
		t.Parallel()
		in := bt.Box("moov", bt.Box("free"), []byte{0, 0, 1})
		_, err := Parse(in)

		var under *UnderrunError
		require.ErrorAs(t, err, &under)
	})
}

func TestParse_ZeroTerminator(t *testing.T) {
	t.Parallel()

	in := bt.Box("udta", bt.Box("free", bt.Zeros(2)), bt.Zeros(4))
	f, err := Parse(in)
	require.NoError(t, err)

	udta := f.GetBox(UDTA)
	require.NotNil(t, udta)
	require.Len(t, udta.Children(), 1)
}

func TestParse_MaxDepth(t *testing.T) {
	t.Parallel()

	_, err := Parse(nested("moov", defaultMaxDepth+1, nil))
	require.ErrorIs(t, err, ErrTooDeep)

	_, err = Parse(nested("moov", defaultMaxDepth-1, nil))
	require.NoError(t, err)

	_, err = Parse(nested("trak", 3, nil), WithMaxDepth(3))
	require.ErrorIs(t, err, ErrTooDeep)

	f, err := Parse(nested("trak", 2, nil), WithMaxDepth(3))
	require.NoError(t, err)
	require.NotNil(t, FindBox(f, TRAK, TRAK))
}

func TestParse_CustomRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry.Clone()
	reg.Register(StringToTag("zzzz"), func(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
		v, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		return &ImageSpatialExtents{BoxHeader: hdr, Width: uint32(v)}, nil
	})

	in := bt.Box("zzzz", bt.U16(7), bt.U16(9))
	f, err := Parse(in, WithRegistry(reg))
	require.NoError(t, err)
	box, ok := GetTypedBox[*ImageSpatialExtents](f, StringToTag("zzzz"))
	require.True(t, ok)
	require.Equal(t, uint32(7), box.Width)
	require.Equal(t, 2, box.Trailing)

	// the default registry is untouched
	_, ok = DefaultRegistry.Lookup(StringToTag("zzzz"))
	require.False(t, ok)
	f, err = Parse(in)
	require.NoError(t, err)
	_, ok = GetTypedBox[*OpaqueBox](f, StringToTag("zzzz"))
	require.True(t, ok)
}

func TestParse_MinimalMovie(t *testing.T) {
	t.Parallel()

	in := bt.MinimalMovie()
	f, err := Parse(in)
	require.NoError(t, err)
	require.Equal(t, uint64(len(in)), f.Size)

	ftyp, ok := GetTypedBox[*FileType](f, FTYP)
	require.True(t, ok)
	require.Equal(t, "isom", ftyp.GetMajorBrand())
	require.Equal(t, uint32(512), ftyp.GetMinorVersion())
	require.Equal(t, []string{"isom", "iso2", "mp41"}, ftyp.GetCompatibleBrands())
	require.True(t, ftyp.HasBrand("mp41"))
	require.False(t, ftyp.HasBrand("qt  "))

	moov, ok := GetTypedBox[*ContainerBox](f, MOOV)
	require.True(t, ok)

	mvhd, ok := GetTypedBox[*MovieHeader](moov, MVHD)
	require.True(t, ok)
	require.Equal(t, uint32(1000), mvhd.GetTimescale())
	require.Equal(t, uint64(5000), mvhd.GetDuration())
	require.Equal(t, 5*time.Second, mvhd.GetDurationTime())
	require.Equal(t, 1.0, mvhd.PreferredRate)
	require.Equal(t, uint32(2), mvhd.NextTrackID)

	traks := moov.GetBoxes(TRAK)
	require.Len(t, traks, 1)

	tkhd, ok := FindBox(traks[0], TKHD).(*TrackHeader)
	require.True(t, ok)
	require.Equal(t, uint32(1), tkhd.GetTrackID())
	require.True(t, tkhd.IsEnabled())
	require.Equal(t, 640.0, tkhd.TrackWidth)
	require.Equal(t, 480.0, tkhd.TrackHeight)

	hdlr, ok := FindBox(traks[0], MDIA, HDLR).(*HandlerRefer)
	require.True(t, ok)
	require.Equal(t, "vide", hdlr.GetHandlerType())
	require.Equal(t, "Handler", hdlr.Name)

	mdhd, ok := FindBox(traks[0], MDIA, MDHD).(*MediaHeader)
	require.True(t, ok)
	require.Equal(t, "und", mdhd.Language)
	require.Equal(t, 5*time.Second, mdhd.GetDurationTime())

	stco, ok := FindBox(traks[0], MDIA, MINF, STBL, STCO).(*ChunkOffset)
	require.True(t, ok)
	require.Equal(t, 3, stco.GetEntryCount())

	mdat, ok := GetTypedBox[*MediaData](f, MDAT)
	require.True(t, ok)
	require.Equal(t, uint64(24), mdat.Size)
	require.Equal(t, int64(len(in)-24), mdat.Offset)
	require.Equal(t, int64(len(in)-16), mdat.DataOffset())
}

func TestWalk(t *testing.T) {
	t.Parallel()

	f, err := Parse(bt.MinimalMovie())
	require.NoError(t, err)

	var types []string
	var maxDepth int
	require.NoError(t, Walk(f, func(b Box, depth int) error {
		if depth > 0 {
			types = append(types, b.Tag().String())
		}
		maxDepth = max(maxDepth, depth)
		return nil
	}))
	require.Equal(t, []string{
		"ftyp", "moov", "mvhd", "trak", "tkhd", "mdia", "mdhd", "hdlr", "minf", "stbl", "stsc", "stco", "mdat",
	}, types)
	require.Equal(t, 6, maxDepth)

	stop := errors.New("stop")
	n := 0
	err = Walk(f, func(b Box, _ int) error {
		n++
		if b.Tag() == MOOV {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 3, n)

	require.Equal(t, STCO, FindChildren(f, STCO).Tag())
	require.Nil(t, FindChildren(f, CO64))
}
