package bmffio

const (
	FTYP = Tag(0x66747970)
	STYP = Tag(0x73747970)
)

// FileType is an 'ftyp' or 'styp' box.
type FileType struct {
	BoxHeader
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
}

func (f *FileType) GetMajorBrand() string {
	return f.MajorBrand.String()
}

func (f *FileType) GetMinorVersion() uint32 {
	return f.MinorVersion
}

func (f *FileType) GetCompatibleBrands() []string {
	brands := make([]string, 0, len(f.CompatibleBrands))
	for _, b := range f.CompatibleBrands {
		brands = append(brands, b.String())
	}
	return brands
}

// HasBrand reports whether brand is the major brand or one of the compatible ones.
func (f *FileType) HasBrand(brand string) bool {
	tag := StringToTag(brand)
	if f.MajorBrand == tag {
		return true
	}
	for _, b := range f.CompatibleBrands {
		if b == tag {
			return true
		}
	}
	return false
}

func decodeFileType(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	f := &FileType{BoxHeader: hdr}
	v, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	f.MajorBrand = Tag(v)
	if f.MinorVersion, err = c.ReadU32(); err != nil {
		return nil, err
	}
	for c.Remaining() >= 4 {
		v, _ = c.ReadU32()
		f.CompatibleBrands = append(f.CompatibleBrands, Tag(v))
	}
	return f, nil
}

func init() {
	register(decodeFileType, FTYP, STYP)
}
