package bmffio

const ELST = Tag(0x656c7374)

type EditList struct {
	BoxHeader
	FullBox
	Entries []EditListEntry
}

type EditListEntry struct {
	SegmentDuration uint64 // in movie timescale units
	MediaTime       int64  // -1 marks an empty edit
	MediaRate       float64
}

func (elst *EditList) GetEntryCount() int {
	return len(elst.Entries)
}

func (elst *EditList) GetEdit(i int) (EditListEntry, error) {
	if err := checkIndex(i, len(elst.Entries)); err != nil {
		return EditListEntry{}, err
	}
	return elst.Entries[i], nil
}

func decodeEditList(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	elst := &EditList{BoxHeader: hdr}
	var err error
	if elst.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	width := timeWidth(elst.Version)
	var count int
	if count, err = readEntryCount(c, 2*width+4); err != nil {
		return nil, err
	}
	elst.Entries = make([]EditListEntry, count)
	for i := range elst.Entries {
		e := &elst.Entries[i]
		if e.SegmentDuration, err = c.ReadUintN(width); err != nil {
			return nil, err
		}
		if width == 8 {
			if e.MediaTime, err = c.ReadI64(); err != nil {
				return nil, err
			}
		} else {
			var t int32
			if t, err = c.ReadI32(); err != nil {
				return nil, err
			}
			e.MediaTime = int64(t)
		}
		var b []byte
		if b, err = c.next(4); err != nil {
			return nil, err
		}
		e.MediaRate = GetFixed32(b)
	}
	return elst, nil
}

func init() {
	register(decodeEditList, ELST)
}
