package bmff

import (
	"fmt"

	"github.com/ugparu/isobmff/format/bmff/bmffio"
)

// MissingBoxError reports a box a summary cannot do without.
type MissingBoxError struct {
	Type string
}

func (e *MissingBoxError) Error() string {
	return fmt.Sprintf("bmff: no %q box", e.Type)
}

type Movie struct {
	MajorBrand       string   `json:"major_brand"`
	MinorVersion     uint32   `json:"minor_version"`
	CompatibleBrands []string `json:"compatible_brands"`
	Timescale        uint32   `json:"timescale,omitempty"`
	Duration         uint64   `json:"duration,omitempty"`
	DurationSeconds  float64  `json:"duration_seconds,omitempty"`
	Fragmented       bool     `json:"fragmented"`
	Fragments        int      `json:"fragments,omitempty"`
	Tracks           []Track  `json:"tracks"`
	PrimaryItem      uint32   `json:"primary_item,omitempty"`
	Items            []Item   `json:"items,omitempty"`
	Boxes            int      `json:"boxes"`
}

type Track struct {
	ID            uint32                      `json:"id"`
	Handler       string                      `json:"handler,omitempty"`
	HandlerName   string                      `json:"handler_name,omitempty"`
	Timescale     uint32                      `json:"timescale,omitempty"`
	Duration      uint64                      `json:"duration,omitempty"`
	Language      string                      `json:"language,omitempty"`
	Codec         string                      `json:"codec,omitempty"`
	Codecs        string                      `json:"codecs,omitempty"`
	Width         uint16                      `json:"width,omitempty"`
	Height        uint16                      `json:"height,omitempty"`
	Channels      uint16                      `json:"channels,omitempty"`
	SampleRate    float64                     `json:"sample_rate,omitempty"`
	SampleCount   int                         `json:"sample_count"`
	SampleToChunk []bmffio.SampleToChunkEntry `json:"sample_to_chunk,omitempty"`
	ChunkOffsets  []uint64                    `json:"chunk_offsets,omitempty"`
	Missing       []string                    `json:"missing,omitempty"`
}

type Item struct {
	ID                 uint32                      `json:"id"`
	Type               string                      `json:"type,omitempty"`
	Name               string                      `json:"name,omitempty"`
	ConstructionMethod uint8                       `json:"construction_method"`
	Width              uint32                      `json:"width,omitempty"`
	Height             uint32                      `json:"height,omitempty"`
	Extents            []bmffio.ItemLocationExtent `json:"extents,omitempty"`
}

// Describe summarizes a decoded file. It needs an 'ftyp' and either a movie ('moov' with
// 'mvhd') or a top-level 'meta'. Boxes missing inside a track are listed in Track.Missing.
func Describe(f *bmffio.File) (*Movie, error) {
	ftyp, ok := bmffio.GetTypedBox[*bmffio.FileType](f, bmffio.FTYP)
	if !ok {
		return nil, &MissingBoxError{Type: "ftyp"}
	}
	m := &Movie{
		MajorBrand:       ftyp.GetMajorBrand(),
		MinorVersion:     ftyp.GetMinorVersion(),
		CompatibleBrands: ftyp.GetCompatibleBrands(),
		Tracks:           []Track{},
		Fragments:        len(f.GetBoxes(bmffio.MOOF)),
		Boxes:            CountBoxes(f),
	}

	moov, hasMoov := bmffio.GetTypedBox[*bmffio.ContainerBox](f, bmffio.MOOV)
	meta, hasMeta := bmffio.GetTypedBox[*bmffio.Meta](f, bmffio.META)
	if !hasMoov && !hasMeta {
		return nil, &MissingBoxError{Type: "moov"}
	}

	if hasMoov {
		mvhd, ok := bmffio.GetTypedBox[*bmffio.MovieHeader](moov, bmffio.MVHD)
		if !ok {
			return nil, &MissingBoxError{Type: "mvhd"}
		}
		m.Timescale = mvhd.GetTimescale()
		m.Duration = mvhd.GetDuration()
		m.DurationSeconds = mvhd.GetDurationTime().Seconds()
		m.Fragmented = moov.GetBox(bmffio.MVEX) != nil
		if mehd, ok := bmffio.FindBox(moov, bmffio.MVEX, bmffio.MEHD).(*bmffio.MovieExtendsHeader); ok && m.Duration == 0 {
			m.Duration = mehd.GetDuration()
			m.DurationSeconds = bmffio.ScaledDuration(m.Duration, m.Timescale).Seconds()
		}
		for _, trak := range moov.GetBoxes(bmffio.TRAK) {
			m.Tracks = append(m.Tracks, describeTrack(trak))
		}
	}
	if hasMeta {
		describeItems(m, meta)
	}
	return m, nil
}

func describeTrack(trak bmffio.Box) (t Track) {
	missing := func(name string) {
		t.Missing = append(t.Missing, name)
	}

	if tkhd, ok := bmffio.FindBox(trak, bmffio.TKHD).(*bmffio.TrackHeader); ok {
		t.ID = tkhd.GetTrackID()
	} else {
		missing("tkhd")
	}
	if hdlr, ok := bmffio.FindBox(trak, bmffio.MDIA, bmffio.HDLR).(*bmffio.HandlerRefer); ok {
		t.Handler = hdlr.GetHandlerType()
		t.HandlerName = hdlr.Name
	} else {
		missing("hdlr")
	}
	if mdhd, ok := bmffio.FindBox(trak, bmffio.MDIA, bmffio.MDHD).(*bmffio.MediaHeader); ok {
		t.Timescale = mdhd.GetTimescale()
		t.Duration = mdhd.GetDuration()
		t.Language = mdhd.Language
	}

	stbl := bmffio.FindBox(trak, bmffio.MDIA, bmffio.MINF, bmffio.STBL)
	if stbl == nil {
		missing("stbl")
		return
	}
	if stsd, ok := bmffio.FindBox(stbl, bmffio.STSD).(*bmffio.SampleDescription); ok && len(stsd.Children()) > 0 {
		entry := stsd.Children()[0]
		t.Codec = entry.Tag().String()
		t.Codecs = codecString(entry)
		switch e := entry.(type) {
		case *bmffio.VisualSampleEntry:
			t.Width, t.Height = e.Width, e.Height
		case *bmffio.AudioSampleEntry:
			t.Channels, t.SampleRate = e.NumberOfChannels, e.SampleRate
		}
	}
	if stsz, ok := bmffio.FindBox(stbl, bmffio.STSZ).(*bmffio.SampleSize); ok {
		t.SampleCount = stsz.GetEntryCount()
	} else if stz2, ok := bmffio.FindBox(stbl, bmffio.STZ2).(*bmffio.SampleSize); ok {
		t.SampleCount = stz2.GetEntryCount()
	}
	if stsc, ok := bmffio.FindBox(stbl, bmffio.STSC).(*bmffio.SampleToChunk); ok {
		t.SampleToChunk = stsc.Entries
	} else {
		missing("stsc")
	}

	var offsets bmffio.ChunkOffsets
	if stco, ok := bmffio.FindBox(stbl, bmffio.STCO).(*bmffio.ChunkOffset); ok {
		offsets = stco
	} else if co64, ok := bmffio.FindBox(stbl, bmffio.CO64).(*bmffio.ChunkLargeOffset); ok {
		offsets = co64
	} else {
		missing("stco")
		return
	}
	t.ChunkOffsets = make([]uint64, 0, offsets.GetEntryCount())
	for i := 0; i < offsets.GetEntryCount(); i++ {
		off, _ := offsets.GetChunkOffset(i)
		t.ChunkOffsets = append(t.ChunkOffsets, off)
	}
	return
}

func describeItems(m *Movie, meta *bmffio.Meta) {
	if pitm, ok := bmffio.GetTypedBox[*bmffio.PrimaryItem](meta, bmffio.PITM); ok {
		m.PrimaryItem = pitm.GetItemID()
	}
	iloc, _ := bmffio.GetTypedBox[*bmffio.ItemLocation](meta, bmffio.ILOC)
	ipco, _ := bmffio.FindBox(meta, bmffio.IPRP, bmffio.IPCO).(*bmffio.ContainerBox)
	ipma, _ := bmffio.FindBox(meta, bmffio.IPRP, bmffio.IPMA).(*bmffio.ItemPropertyAssociation)

	iinf, ok := bmffio.GetTypedBox[*bmffio.ItemInfo](meta, bmffio.IINF)
	if !ok {
		return
	}
	for _, infe := range iinf.GetItems() {
		item := Item{
			ID:   infe.GetItemID(),
			Type: infe.GetItemType(),
			Name: infe.ItemName,
		}
		if iloc != nil {
			if loc, ok := iloc.FindItem(item.ID); ok {
				item.ConstructionMethod = loc.ConstructionMethod
				item.Extents = loc.GetExtents()
			}
		}
		if ipco != nil && ipma != nil {
			props := ipco.Children()
			for _, p := range ipma.GetProperties(item.ID) {
				if p.Index == 0 || int(p.Index) > len(props) {
					continue
				}
				if ispe, ok := props[p.Index-1].(*bmffio.ImageSpatialExtents); ok {
					item.Width, item.Height = ispe.Width, ispe.Height
				}
			}
		}
		m.Items = append(m.Items, item)
	}
}
