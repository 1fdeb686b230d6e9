package bmffio

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// macRoman decodes Mac OS Roman text as used by QuickTime.
func macRoman(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	s, err := charmap.Macintosh.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// pascalString decodes a length-prefixed string stored in a fixed-size field.
func pascalString(field []byte) string {
	if len(field) == 0 {
		return ""
	}
	n := int(field[0])
	if n > len(field)-1 {
		n = len(field) - 1
	}
	return macRoman(field[1 : 1+n])
}
