package bmffio

import "maps"

// DecodeFunc decodes the payload of one box. c is scoped to exactly the box's payload and hdr
// is already filled in. Container decoders recurse through p.ReadBoxes.
type DecodeFunc func(p *Parser, hdr BoxHeader, c *Cursor) (Box, error)

// Registry maps box types to decoders. Types without a decoder resolve to an opaque decoder
// that keeps the raw payload.
type Registry struct {
	decoders map[Tag]DecodeFunc
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Tag]DecodeFunc)}
}

// Register associates tag with fn, replacing any previous decoder.
func (r *Registry) Register(tag Tag, fn DecodeFunc) {
	r.decoders[tag] = fn
}

// Lookup returns the decoder registered for tag, if any.
func (r *Registry) Lookup(tag Tag) (fn DecodeFunc, ok bool) {
	fn, ok = r.decoders[tag]
	return
}

// Resolve never fails: unknown types get the opaque decoder.
func (r *Registry) Resolve(tag Tag) DecodeFunc {
	if fn, ok := r.decoders[tag]; ok {
		return fn
	}
	return decodeOpaque
}

// Clone returns an independent copy that can be extended without touching r.
func (r *Registry) Clone() *Registry {
	return &Registry{decoders: maps.Clone(r.decoders)}
}

// DefaultRegistry holds every decoder in this package. It is filled during package
// initialization and must only be read afterwards; extend a Clone instead.
var DefaultRegistry = NewRegistry()

func register(fn DecodeFunc, tags ...Tag) {
	for _, tag := range tags {
		DefaultRegistry.Register(tag, fn)
	}
}

func init() {
	register(decodeContainer,
		MOOV, TRAK, MDIA, MINF, STBL, DINF, EDTS, UDTA, MVEX,
		MOOF, TRAF, MFRA, IPRP, IPCO, SINF, SCHI, TREF,
	)
}
