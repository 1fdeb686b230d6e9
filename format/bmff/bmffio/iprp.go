package bmffio

const (
	ISPE = Tag(0x69737065)
	IPMA = Tag(0x69706d61)
)

// ImageSpatialExtents is the 'ispe' property holding an image item's dimensions.
type ImageSpatialExtents struct {
	BoxHeader
	FullBox
	Width  uint32
	Height uint32
}

func decodeImageSpatialExtents(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	ispe := &ImageSpatialExtents{BoxHeader: hdr}
	var err error
	if ispe.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if ispe.Width, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if ispe.Height, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return ispe, nil
}

// ItemPropertyAssociation maps items to 1-based indexes of 'ipco' children.
type ItemPropertyAssociation struct {
	BoxHeader
	FullBox
	Entries []ItemPropertyAssociationEntry
}

type ItemPropertyAssociationEntry struct {
	ItemID       uint32
	Associations []ItemProperty
}

type ItemProperty struct {
	Essential bool
	Index     uint16 // 0 means no property
}

func (ipma *ItemPropertyAssociation) GetEntryCount() int {
	return len(ipma.Entries)
}

// GetProperties returns the associations of the given item.
func (ipma *ItemPropertyAssociation) GetProperties(itemID uint32) []ItemProperty {
	for _, e := range ipma.Entries {
		if e.ItemID == itemID {
			return e.Associations
		}
	}
	return nil
}

func decodeItemPropertyAssociation(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	ipma := &ItemPropertyAssociation{BoxHeader: hdr}
	var err error
	if ipma.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	idWidth := 2
	if ipma.Version >= 1 {
		idWidth = 4
	}
	propWidth := 1
	if ipma.Flags&1 != 0 {
		propWidth = 2
	}
	var count int
	if count, err = readEntryCount(c, idWidth+1); err != nil {
		return nil, err
	}
	ipma.Entries = make([]ItemPropertyAssociationEntry, count)
	for i := range ipma.Entries {
		e := &ipma.Entries[i]
		var v uint64
		if v, err = c.ReadUintN(idWidth); err != nil {
			return nil, err
		}
		e.ItemID = uint32(v)
		var n uint8
		if n, err = c.ReadU8(); err != nil {
			return nil, err
		}
		if err = c.need(uint64(n) * uint64(propWidth)); err != nil {
			return nil, err
		}
		e.Associations = make([]ItemProperty, n)
		for j := range e.Associations {
			v, _ = c.ReadUintN(propWidth)
			if propWidth == 2 {
				e.Associations[j] = ItemProperty{Essential: v&0x8000 != 0, Index: uint16(v & 0x7fff)}
			} else {
				e.Associations[j] = ItemProperty{Essential: v&0x80 != 0, Index: uint16(v & 0x7f)}
			}
		}
	}
	return ipma, nil
}

func init() {
	register(decodeImageSpatialExtents, ISPE)
	register(decodeItemPropertyAssociation, IPMA)
}
