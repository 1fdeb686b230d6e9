package bmffio

const HDLR = Tag(0x68646c72)

// Common handler types.
const (
	HandlerVideo    = Tag(0x76696465) // vide
	HandlerSound    = Tag(0x736f756e) // soun
	HandlerHint     = Tag(0x68696e74) // hint
	HandlerMeta     = Tag(0x6d657461) // meta
	HandlerPicture  = Tag(0x70696374) // pict
	HandlerText     = Tag(0x74657874) // text
	HandlerSubtitle = Tag(0x7362746c) // sbtl
)

type HandlerRefer struct {
	BoxHeader
	FullBox
	PreDefined  uint32 // QuickTime component type, 0 in ISO files
	HandlerType Tag
	Reserved    [3]uint32
	Name        string
}

func (hdlr *HandlerRefer) GetHandlerType() string {
	return hdlr.HandlerType.String()
}

func decodeHandlerRefer(_ *Parser, hdr BoxHeader, c *Cursor) (Box, error) {
	hdlr := &HandlerRefer{BoxHeader: hdr}
	var err error
	if hdlr.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if hdlr.PreDefined, err = c.ReadU32(); err != nil {
		return nil, err
	}
	var v uint32
	if v, err = c.ReadU32(); err != nil {
		return nil, err
	}
	hdlr.HandlerType = Tag(v)
	for i := range hdlr.Reserved {
		if hdlr.Reserved[i], err = c.ReadU32(); err != nil {
			return nil, err
		}
	}

	// QuickTime writes a counted Mac Roman string, ISO a NUL terminated UTF-8 one.
	if n := c.Remaining(); n > 1 {
		b, _ := c.Peek(n)
		if int(b[0]) == n-1 || (hdlr.PreDefined != 0 && int(b[0]) < n) {
			hdlr.Name = pascalString(b)
			c.SkipAll()
			return hdlr, nil
		}
	}
	hdlr.Name = c.ReadCString()
	return hdlr, nil
}

func init() {
	register(decodeHandlerRefer, HDLR)
}
