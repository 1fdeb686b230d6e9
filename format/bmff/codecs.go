package bmff

import (
	"github.com/ugparu/isobmff/codec/aac"
	"github.com/ugparu/isobmff/codec/h264"
	"github.com/ugparu/isobmff/codec/h265"
	"github.com/ugparu/isobmff/format/bmff/bmffio"
)

// codecString returns the RFC 6381 codecs parameter of a sample entry. Entries without a
// readable configuration record yield their bare type.
func codecString(entry bmffio.Box) string {
	name := entry.Tag().String()
	for _, child := range entry.Children() {
		switch cfg := child.(type) {
		case *bmffio.CodecConfig:
			switch cfg.Type {
			case bmffio.AVCC:
				var rec h264.AVCDecoderConfRecord
				if _, err := rec.Unmarshal(cfg.Data); err == nil {
					return rec.CodecString(name)
				}
			case bmffio.HVCC:
				var rec h265.HEVCDecoderConfRecord
				if _, err := rec.Unmarshal(cfg.Data); err == nil {
					return rec.CodecString(name)
				}
			}
		case *bmffio.ElemStreamDesc:
			var desc aac.ESDescriptor
			if err := desc.Unmarshal(cfg.Data); err == nil {
				return desc.CodecString(name)
			}
		}
	}
	return name
}
