package bmffio

import "github.com/deepch/vdk/utils/bits/pio"

const (
	META = Tag(0x6d657461)
	PITM = Tag(0x7069746d)
	IINF = Tag(0x69696e66)
	INFE = Tag(0x696e6665)
	IDAT = Tag(0x69646174)
)

// Meta is the 'meta' box. QuickTime movies omit the version and flags preamble, which is
// detected from the 'hdlr' type appearing where ISO files have the first child's size.
type Meta struct {
	BoxHeader
	FullBox
	QuickTime bool
	BoxList
}

func (meta *Meta) Children() []Box {
	return meta.BoxList
}

func decodeMeta(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	meta := &Meta{BoxHeader: hdr}
	var err error
	if b, _ := c.Peek(8); b != nil && Tag(pio.U32BE(b[4:])) == HDLR {
		meta.QuickTime = true
	} else if meta.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if meta.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return meta, nil
}

// PrimaryItem names the item a reader shows by default.
type PrimaryItem struct {
	BoxHeader
	FullBox
	ItemID uint32
}

func (pitm *PrimaryItem) GetItemID() uint32 {
	return pitm.ItemID
}

func decodePrimaryItem(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	pitm := &PrimaryItem{BoxHeader: hdr}
	var err error
	if pitm.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := 4
	if pitm.Version == 0 {
		width = 2
	}
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	pitm.ItemID = uint32(v)
	return pitm, nil
}

// ItemInfo is the 'iinf' box. Its entries are 'infe' children.
type ItemInfo struct {
	BoxHeader
	FullBox
	EntryCount uint32
	BoxList
}

func (iinf *ItemInfo) Children() []Box {
	return iinf.BoxList
}

func (iinf *ItemInfo) GetEntryCount() int {
	return int(iinf.EntryCount)
}

// GetItems returns the decoded item info entries in stream order.
func (iinf *ItemInfo) GetItems() []*ItemInfoEntry {
	return GetTypedBoxes[*ItemInfoEntry](iinf, INFE)
}

func decodeItemInfo(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	iinf := &ItemInfo{BoxHeader: hdr}
	var err error
	if iinf.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := 4
	if iinf.Version == 0 {
		width = 2
	}
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	iinf.EntryCount = uint32(v)
	if iinf.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return iinf, nil
}

// Item types of version 2 and later item info entries.
const (
	ItemTypeMime = Tag(0x6d696d65)
	ItemTypeURI  = Tag(0x75726920)
)

type ItemInfoEntry struct {
	BoxHeader
	FullBox
	ItemID              uint32
	ItemProtectionIndex uint16
	ItemType            Tag // version 2 and later
	ItemName            string
	ContentType         string
	ContentEncoding     string
	ItemURIType         string
}

func (infe *ItemInfoEntry) GetItemID() uint32 {
	return infe.ItemID
}

func (infe *ItemInfoEntry) GetItemType() string {
	return infe.ItemType.String()
}

func decodeItemInfoEntry(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	infe := &ItemInfoEntry{BoxHeader: hdr}
	var err error
	if infe.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}

	if infe.Version < 2 {
		var id uint16
		if id, err = c.ReadU16(); err != nil {
			return nil, err
		}
		infe.ItemID = uint32(id)
		if infe.ItemProtectionIndex, err = c.ReadU16(); err != nil {
			return nil, err
		}
		infe.ItemName = c.ReadCString()
		infe.ContentType = c.ReadCString()
		infe.ContentEncoding = c.ReadCString()
		return infe, nil
	}

	width := 2
	if infe.Version > 2 {
		width = 4
	}
	var v uint64
	if v, err = c.ReadUintN(width); err != nil {
		return nil, err
	}
	infe.ItemID = uint32(v)
	if infe.ItemProtectionIndex, err = c.ReadU16(); err != nil {
		return nil, err
	}
	var typ uint32
	if typ, err = c.ReadU32(); err != nil {
		return nil, err
	}
	infe.ItemType = Tag(typ)
	infe.ItemName = c.ReadCString()
	switch infe.ItemType {
	case ItemTypeMime:
		infe.ContentType = c.ReadCString()
		infe.ContentEncoding = c.ReadCString()
	case ItemTypeURI:
		infe.ItemURIType = c.ReadCString()
	}
	return infe, nil
}

// ItemData holds item payloads stored inside the 'meta' box.
type ItemData struct {
	BoxHeader
	Data []byte
}

func decodeItemData(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	data, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	return &ItemData{BoxHeader: hdr, Data: data}, nil
}

func init() {
	register(decodeMeta, META)
	register(decodePrimaryItem, PITM)
	register(decodeItemInfo, IINF)
	register(decodeItemInfoEntry, INFE)
	register(decodeItemData, IDAT)
}
