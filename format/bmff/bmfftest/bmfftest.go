// Package bmfftest builds ISO BMFF byte streams for tests.
package bmfftest

import (
	"bytes"

	"github.com/deepch/vdk/utils/bits/pio"
)

func U8(v uint8) []byte {
	return []byte{v}
}

func U16(v uint16) []byte {
	b := make([]byte, 2)
	pio.PutU16BE(b, v)
	return b
}

func U24(v uint32) []byte {
	b := make([]byte, 3)
	pio.PutU24BE(b, v)
	return b
}

func U32(v uint32) []byte {
	b := make([]byte, 4)
	pio.PutU32BE(b, v)
	return b
}

func U64(v uint64) []byte {
	b := make([]byte, 8)
	pio.PutU64BE(b, v)
	return b
}

// CString returns s followed by a NUL.
func CString(s string) []byte {
	return append([]byte(s), 0)
}

// Zeros returns n zero bytes.
func Zeros(n int) []byte {
	return make([]byte, n)
}

func Cat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// Box wraps payload in a header with a 32-bit size.
func Box(typ string, payload ...[]byte) []byte {
	body := Cat(payload...)
	return Cat(U32(uint32(8+len(body))), []byte(typ), body)
}

// LargeBox wraps payload in a header that carries its size in the 64-bit field.
func LargeBox(typ string, payload ...[]byte) []byte {
	body := Cat(payload...)
	return Cat(U32(1), []byte(typ), U64(uint64(16+len(body))), body)
}

// OpenBox wraps payload in a header with size 0, which extends to the end of the scope.
func OpenBox(typ string, payload ...[]byte) []byte {
	return Cat(U32(0), []byte(typ), Cat(payload...))
}

// UUIDBox wraps payload in a 'uuid' box with the given extended type.
func UUIDBox(userType [16]byte, payload ...[]byte) []byte {
	body := Cat(payload...)
	return Cat(U32(uint32(24+len(body))), []byte("uuid"), userType[:], body)
}

// FullBox prepends version and flags to payload.
func FullBox(typ string, version uint8, flags uint32, payload ...[]byte) []byte {
	return Box(typ, Cat(U8(version), U24(flags)), Cat(payload...))
}

func Ftyp(major string, minor uint32, compatible ...string) []byte {
	b := Cat([]byte(major), U32(minor))
	for _, c := range compatible {
		b = append(b, c...)
	}
	return Box("ftyp", b)
}

// Mvhd builds a version 0 movie header.
func Mvhd(timescale, duration uint32) []byte {
	return FullBox("mvhd", 0, 0,
		U32(0), U32(0), U32(timescale), U32(duration),
		U32(0x00010000), U16(0x0100), Zeros(10),
		identityMatrix(),
		Zeros(24), U32(2),
	)
}

// Tkhd builds a version 0 track header.
func Tkhd(trackID, duration uint32) []byte {
	return FullBox("tkhd", 0, 3,
		U32(0), U32(0), U32(trackID), U32(0), U32(duration),
		Zeros(8), U16(0), U16(0), U16(0), U16(0),
		identityMatrix(),
		U32(640<<16), U32(480<<16),
	)
}

func Mdhd(timescale, duration uint32) []byte {
	// 'und' packed as three 5-bit letters
	return FullBox("mdhd", 0, 0, U32(0), U32(0), U32(timescale), U32(duration), U16(0x55c4), U16(0))
}

func Hdlr(handler, name string) []byte {
	return FullBox("hdlr", 0, 0, U32(0), []byte(handler), Zeros(12), CString(name))
}

func Stco(offsets ...uint32) []byte {
	b := U32(uint32(len(offsets)))
	for _, o := range offsets {
		b = append(b, U32(o)...)
	}
	return FullBox("stco", 0, 0, b)
}

func Co64(offsets ...uint64) []byte {
	b := U32(uint32(len(offsets)))
	for _, o := range offsets {
		b = append(b, U64(o)...)
	}
	return FullBox("co64", 0, 0, b)
}

// Stsc builds a sample-to-chunk table from (first chunk, samples per chunk, description) triples.
func Stsc(entries ...[3]uint32) []byte {
	b := U32(uint32(len(entries)))
	for _, e := range entries {
		b = Cat(b, U32(e[0]), U32(e[1]), U32(e[2]))
	}
	return FullBox("stsc", 0, 0, b)
}

// Track builds a 'trak' with the boxes a reader needs to list it.
func Track(trackID uint32, handler string, stbl ...[]byte) []byte {
	return Box("trak",
		Tkhd(trackID, 5000),
		Box("mdia",
			Mdhd(90000, 450000),
			Hdlr(handler, "Handler"),
			Box("minf", Box("stbl", stbl...)),
		),
	)
}

// MinimalMovie is an 'isom' file with a five second movie and one video track.
func MinimalMovie() []byte {
	return Cat(
		Ftyp("isom", 512, "isom", "iso2", "mp41"),
		Box("moov",
			Mvhd(1000, 5000),
			Track(1, "vide",
				Stsc([3]uint32{1, 1, 1}),
				Stco(48, 4096, 8192),
			),
		),
		Box("mdat", Zeros(16)),
	)
}

func identityMatrix() []byte {
	return Cat(
		U32(0x00010000), U32(0), U32(0),
		U32(0), U32(0x00010000), U32(0),
		U32(0), U32(0), U32(0x40000000),
	)
}

// HeifImage is a still image file: one coded item of 4032x3024 stored at offset 4096, plus an
// XMP item describing it.
func HeifImage() []byte {
	return Cat(
		Ftyp("heic", 0, "mif1", "heic"),
		FullBox("meta", 0, 0,
			Hdlr("pict", ""),
			FullBox("pitm", 0, 0, U16(1)),
			FullBox("iinf", 0, 0, U16(2),
				FullBox("infe", 2, 0, U16(1), U16(0), []byte("hvc1"), CString("Image")),
				FullBox("infe", 2, 0, U16(2), U16(0), []byte("mime"), CString("XMP"),
					CString("application/rdf+xml")),
			),
			FullBox("iref", 0, 0,
				Box("cdsc", U16(2), U16(1), U16(1)),
			),
			Box("iprp",
				Box("ipco",
					Box("hvcC", []byte{1, 2, 3}),
					FullBox("ispe", 0, 0, U32(4032), U32(3024)),
				),
				FullBox("ipma", 0, 0, U32(1), U16(1), U8(2), U8(0x81), U8(0x02)),
			),
			FullBox("iloc", 0, 0,
				U8(0x44), U8(0x00), U16(1),
				U16(1), U16(0), U16(1), U32(4096), U32(1000),
			),
		),
	)
}
