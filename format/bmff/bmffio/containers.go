package bmffio

const (
	MOOV = Tag(0x6d6f6f76)
	TRAK = Tag(0x7472616b)
	MDIA = Tag(0x6d646961)
	MINF = Tag(0x6d696e66)
	STBL = Tag(0x7374626c)
	DINF = Tag(0x64696e66)
	EDTS = Tag(0x65647473)
	UDTA = Tag(0x75647461)
	MVEX = Tag(0x6d766578)
	MOOF = Tag(0x6d6f6f66)
	TRAF = Tag(0x74726166)
	MFRA = Tag(0x6d667261)
	IPRP = Tag(0x69707270)
	IPCO = Tag(0x6970636f)
	SINF = Tag(0x73696e66)
	SCHI = Tag(0x73636869)
	TREF = Tag(0x74726566)

	MDAT = Tag(0x6d646174)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
)

// MediaData marks where sample data lives. The payload itself is not retained.
type MediaData struct {
	BoxHeader
}

func decodeMediaData(_ *Parser, hdr BoxHeader, _ *Cursor) (Box, error) {
	return &MediaData{BoxHeader: hdr}, nil
}

// FreeSpace is a 'free' or 'skip' box.
type FreeSpace struct {
	BoxHeader
}

func decodeFreeSpace(_ *Parser, hdr BoxHeader, _ *Cursor) (Box, error) {
	return &FreeSpace{BoxHeader: hdr}, nil
}

func init() {
	register(decodeMediaData, MDAT)
	register(decodeFreeSpace, FREE, SKIP)
}

// readEntryCount reads a 32-bit entry count and checks that count entries of entrySize bytes
// fit in what is left of the box.
func readEntryCount(c *Cursor, entrySize int) (int, error) {
	count, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	if err = c.need(uint64(count) * uint64(entrySize)); err != nil {
		return 0, err
	}
	return int(count), nil
}
