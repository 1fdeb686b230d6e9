package bmffio

const (
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20)
	URN  = Tag(0x75726e20)
)

// DataEntrySelfContained is set on a data entry whose media is in the same file.
const DataEntrySelfContained = 0x000001

// DataReference is the 'dref' table. Its entries are decoded as child boxes.
type DataReference struct {
	BoxHeader
	FullBox
	EntryCount uint32
	BoxList
}

func (dref *DataReference) Children() []Box {
	return dref.BoxList
}

func (dref *DataReference) GetEntryCount() int {
	return int(dref.EntryCount)
}

func decodeDataReference(p *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	dref := &DataReference{BoxHeader: hdr}
	var err error
	if dref.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if dref.EntryCount, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if dref.BoxList, err = p.ReadBoxes(c); err != nil {
		return nil, err
	}
	return dref, nil
}

// DataEntry is a 'url ' or 'urn ' entry of a data reference.
type DataEntry struct {
	BoxHeader
	FullBox
	Name     string // 'urn ' only
	Location string
}

func (d *DataEntry) IsSelfContained() bool {
	return d.Flags&DataEntrySelfContained != 0
}

func decodeDataEntry(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	d := &DataEntry{BoxHeader: hdr}
	var err error
	if d.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if d.IsSelfContained() {
		return d, nil
	}
	if hdr.Type == URN {
		d.Name = c.ReadCString()
	}
	d.Location = c.ReadCString()
	return d, nil
}

func init() {
	register(decodeDataReference, DREF)
	register(decodeDataEntry, URL, URN)
}
