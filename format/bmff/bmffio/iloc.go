package bmffio

const ILOC = Tag(0x696c6f63)

// Item construction methods.
const (
	ConstructFileOffset = 0
	ConstructIdatOffset = 1
	ConstructItemOffset = 2
)

// ItemLocation is the 'iloc' table of where each item's data lives.
type ItemLocation struct {
	BoxHeader
	FullBox
	OffsetSize     uint8
	LengthSize     uint8
	BaseOffsetSize uint8
	IndexSize      uint8 // versions 1 and 2 only
	Items          []ItemLocationItem
}

type ItemLocationItem struct {
	ItemID             uint32
	ConstructionMethod uint8
	DataReferenceIndex uint16
	BaseOffset         uint64
	Extents            []ItemLocationExtent
}

type ItemLocationExtent struct {
	Index  uint64
	Offset uint64
	Length uint64
}

func (iloc *ItemLocation) GetItems() []ItemLocationItem {
	return iloc.Items
}

func (iloc *ItemLocation) GetEntryCount() int {
	return len(iloc.Items)
}

func (iloc *ItemLocation) GetItem(i int) (ItemLocationItem, error) {
	if err := checkIndex(i, len(iloc.Items)); err != nil {
		return ItemLocationItem{}, err
	}
	return iloc.Items[i], nil
}

// FindItem returns the location of the item with the given ID.
func (iloc *ItemLocation) FindItem(id uint32) (ItemLocationItem, bool) {
	for _, item := range iloc.Items {
		if item.ItemID == id {
			return item, true
		}
	}
	return ItemLocationItem{}, false
}

func (item *ItemLocationItem) GetExtents() []ItemLocationExtent {
	return item.Extents
}

// ilocWidth maps a declared size nibble to a field width. Undefined sizes read as absent.
func ilocWidth(n uint8) int {
	switch n {
	case 2, 4, 8:
		return int(n)
	default:
		return 0
	}
}

func decodeItemLocation(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	iloc := &ItemLocation{BoxHeader: hdr}
	var err error
	if iloc.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var v uint16
	if v, err = c.ReadU16(); err != nil {
		return nil, err
	}
	iloc.OffsetSize = uint8(v >> 12)
	iloc.LengthSize = uint8(v >> 8 & 0x0f)
	iloc.BaseOffsetSize = uint8(v >> 4 & 0x0f)
	versioned := iloc.Version == 1 || iloc.Version == 2
	if versioned {
		iloc.IndexSize = uint8(v & 0x0f)
	}

	idWidth := 0
	switch {
	case iloc.Version < 2:
		idWidth = 2
	case iloc.Version == 2:
		idWidth = 4
	}

	var count uint64
	switch {
	case iloc.Version < 2:
		count, err = c.ReadUintN(2)
	case iloc.Version == 2:
		count, err = c.ReadUintN(4)
	}
	if err != nil {
		return nil, err
	}

	offsetWidth := ilocWidth(iloc.OffsetSize)
	lengthWidth := ilocWidth(iloc.LengthSize)
	baseWidth := ilocWidth(iloc.BaseOffsetSize)
	indexWidth := 0
	if versioned {
		indexWidth = ilocWidth(iloc.IndexSize)
	}
	itemSize := idWidth + 2 + baseWidth + 2
	if versioned {
		itemSize += 2
	}
	extentSize := indexWidth + offsetWidth + lengthWidth

	if err = c.need(count * uint64(itemSize)); err != nil {
		return nil, err
	}
	iloc.Items = make([]ItemLocationItem, count)
	fieldless := 0
	for i := range iloc.Items {
		item := &iloc.Items[i]
		var id uint64
		if id, err = c.ReadUintN(idWidth); err != nil {
			return nil, err
		}
		item.ItemID = uint32(id)
		if versioned {
			if v, err = c.ReadU16(); err != nil {
				return nil, err
			}
			// ISO/IEC 14496-12 reserves the upper 12 bits; only the low 4 carry the method
			item.ConstructionMethod = uint8(v & 0x0f)
		}
		if item.DataReferenceIndex, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if item.BaseOffset, err = c.ReadUintN(baseWidth); err != nil {
			return nil, err
		}
		var extents uint16
		if extents, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if err = c.need(uint64(extents) * uint64(extentSize)); err != nil {
			return nil, err
		}
		if extentSize == 0 {
			// extents without any fields, capped relative to the box size
			fieldless += int(extents)
		}
		if fieldless > c.Len()*8 {
			return nil, &UnderrunError{Offset: c.Position(), Requested: uint64(extents), Available: uint64(c.Remaining())}
		}
		item.Extents = make([]ItemLocationExtent, extents)
		for j := range item.Extents {
			e := &item.Extents[j]
			if e.Index, err = c.ReadUintN(indexWidth); err != nil {
				return nil, err
			}
			if e.Offset, err = c.ReadUintN(offsetWidth); err != nil {
				return nil, err
			}
			if e.Length, err = c.ReadUintN(lengthWidth); err != nil {
				return nil, err
			}
		}
	}
	return iloc, nil
}

func init() {
	register(decodeItemLocation, ILOC)
}
