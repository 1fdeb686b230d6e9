package bmffio

const (
	VMHD = Tag(0x766d6864)
	SMHD = Tag(0x736d6864)
	NMHD = Tag(0x6e6d6864)
)

type VideoMediaInfo struct {
	BoxHeader
	FullBox
	GraphicsMode uint16
	Opcolor      [3]uint16
}

func decodeVideoMediaInfo(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	vmhd := &VideoMediaInfo{BoxHeader: hdr}
	var err error
	if vmhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if vmhd.GraphicsMode, err = c.ReadU16(); err != nil {
		return nil, err
	}
	for i := range vmhd.Opcolor {
		if vmhd.Opcolor[i], err = c.ReadU16(); err != nil {
			return nil, err
		}
	}
	return vmhd, nil
}

type SoundMediaInfo struct {
	BoxHeader
	FullBox
	Balance float64
}

func decodeSoundMediaInfo(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	smhd := &SoundMediaInfo{BoxHeader: hdr}
	var err error
	if smhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.next(4); err != nil {
		return nil, err
	}
	smhd.Balance = GetSignedFixed16(b)
	return smhd, nil
}

// NullMediaInfo is the 'nmhd' header of tracks without a specific media header.
type NullMediaInfo struct {
	BoxHeader
	FullBox
}

func decodeNullMediaInfo(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	nmhd := &NullMediaInfo{BoxHeader: hdr}
	var err error
	if nmhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	return nmhd, nil
}

func init() {
	register(decodeVideoMediaInfo, VMHD)
	register(decodeSoundMediaInfo, SMHD)
	register(decodeNullMediaInfo, NMHD)
}
