package bmffio

import (
	"fmt"
	"io"
)

const defaultMaxDepth = 32

type Option func(*Parser)

// WithRegistry makes the parser resolve decoders from r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(p *Parser) {
		p.registry = r
	}
}

// WithMaxDepth bounds how deeply boxes may nest.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// Parser drives one depth-first decode. It keeps per-parse state and must not be shared
// between goroutines.
type Parser struct {
	registry *Registry
	maxDepth int
	depth    int
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		registry: DefaultRegistry,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes every top-level box of b. On failure no tree is returned.
func Parse(b []byte, opts ...Option) (*File, error) {
	return NewParser(opts...).Parse(b)
}

// ReadFile reads r to its end and decodes the result.
func ReadFile(r io.Reader, opts ...Option) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b, opts...)
}

func (p *Parser) Parse(b []byte) (*File, error) {
	p.depth = 0
	boxes, err := p.ReadBoxes(NewCursor(b, 0))
	if err != nil {
		return nil, err
	}
	f := &File{}
	f.Size = uint64(len(b))
	f.BoxList = boxes
	return f, nil
}

// ReadBoxes decodes sibling boxes until c is exhausted.
func (p *Parser) ReadBoxes(c *Cursor) (BoxList, error) {
	return p.ReadBoxesWith(c, nil)
}

// ReadBoxesWith decodes sibling boxes until c is exhausted, using fn for every box instead of
// the registry when fn is not nil. Boxes whose payload layout depends on the parent use it.
func (p *Parser) ReadBoxesWith(c *Cursor, fn DecodeFunc) (boxes BoxList, err error) {
	if p.depth >= p.maxDepth {
		return nil, parseErr("depth", c.Position(), ErrTooDeep)
	}
	p.depth++
	defer func() { p.depth-- }()

	for c.Remaining() > 0 {
		if c.Remaining() < HeaderSize {
			offset := c.Position()
			rest, _ := c.Peek(c.Remaining())
			if allZero(rest) {
				c.SkipAll()
				break
			}
			return nil, parseErr("header", offset, c.need(HeaderSize))
		}
		var box Box
		if box, err = p.readBox(c, fn); err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// ReadBox decodes the single box at the cursor and advances past its declared size.
func (p *Parser) ReadBox(c *Cursor) (Box, error) {
	return p.readBox(c, nil)
}

func (p *Parser) readBox(c *Cursor, fn DecodeFunc) (Box, error) {
	offset := c.Position()
	hdr, err := readHeader(c)
	if err != nil {
		return nil, parseErr("header", offset, err)
	}
	debug := hdr.Type.String()

	scope, err := c.Scope(hdr.PayloadSize())
	if err != nil {
		return nil, parseErr(debug, offset, err)
	}
	if fn == nil {
		fn = p.registry.Resolve(hdr.Type)
	}
	box, err := fn(p, hdr, scope)
	if err != nil {
		return nil, parseErr(debug, offset, err)
	}
	if box == nil {
		return nil, parseErr(debug, offset, fmt.Errorf("bmffio: decoder for %q returned no box", debug))
	}
	box.Header().Trailing = scope.SkipAll()
	return box, nil
}

func readHeader(c *Cursor) (hdr BoxHeader, err error) {
	hdr.Offset = c.Position()
	start := c.Consumed()

	var size32, typ uint32
	if size32, err = c.ReadU32(); err != nil {
		return
	}
	if typ, err = c.ReadU32(); err != nil {
		return
	}
	hdr.Type = Tag(typ)

	switch size32 {
	case 1:
		if hdr.Size, err = c.ReadU64(); err != nil {
			return
		}
	default:
		hdr.Size = uint64(size32)
	}

	if hdr.Type == UUID {
		var b []byte
		if b, err = c.next(UserTypeSize); err != nil {
			return
		}
		copy(hdr.UserType[:], b)
	}
	hdr.HeaderSize = c.Consumed() - start

	if size32 == 0 {
		hdr.Size = uint64(hdr.HeaderSize + c.Remaining())
	}
	if hdr.Size < uint64(hdr.HeaderSize) {
		err = &BoxSizeError{Type: hdr.Type, Offset: hdr.Offset, Size: hdr.Size, HeaderSize: hdr.HeaderSize}
	}
	return
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
