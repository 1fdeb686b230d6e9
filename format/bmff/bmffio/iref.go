package bmffio

const IREF = Tag(0x69726566)

// Common item reference types.
const (
	CDSC = Tag(0x63647363) // content describes
	DIMG = Tag(0x64696d67) // derived image
	THMB = Tag(0x74686d62) // thumbnail
	AUXL = Tag(0x6175786c) // auxiliary image
)

// ItemReference is the 'iref' box. Every child is a reference of the child's type, whatever
// that type is, with item IDs as wide as the iref version selects.
type ItemReference struct {
	BoxHeader
	FullBox
	BoxList
}

func (iref *ItemReference) Children() []Box {
	return iref.BoxList
}

// GetReferences returns every reference of the given type, in stream order.
func (iref *ItemReference) GetReferences(typ Tag) []*SingleItemTypeReference {
	return GetTypedBoxes[*SingleItemTypeReference](iref, typ)
}

func decodeItemReference(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	iref := &ItemReference{BoxHeader: hdr}
	var err error
	if iref.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := 2
	if iref.Version != 0 {
		width = 4
	}
	if iref.BoxList, err = p.ReadBoxesWith(c, singleItemTypeReferenceDecoder(width)); err != nil {
		return nil, err
	}
	return iref, nil
}

// SingleItemTypeReference links one item to others, e.g. 'cdsc' from metadata to an image.
type SingleItemTypeReference struct {
	BoxHeader
	FromItemID uint32
	ToItemIDs  []uint32
}

func (r *SingleItemTypeReference) GetFromItemID() uint32 {
	return r.FromItemID
}

func (r *SingleItemTypeReference) GetToItemIDs() []uint32 {
	return r.ToItemIDs
}

func singleItemTypeReferenceDecoder(width int) DecodeFunc {
	return func(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
		r := &SingleItemTypeReference{BoxHeader: hdr}
		v, err := c.ReadUintN(width)
		if err != nil {
			return nil, err
		}
		r.FromItemID = uint32(v)
		var count uint16
		if count, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if err = c.need(uint64(count) * uint64(width)); err != nil {
			return nil, err
		}
		r.ToItemIDs = make([]uint32, count)
		for i := range r.ToItemIDs {
			v, _ = c.ReadUintN(width)
			r.ToItemIDs[i] = uint32(v)
		}
		return r, nil
	}
}

func init() {
	register(decodeItemReference, IREF)
}
