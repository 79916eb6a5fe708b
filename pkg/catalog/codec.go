package catalog

import (
	"encoding/binary"

	"github.com/leterax/voxelcore/pkg/storage"
)

// KindCodec returns the fixed-width wire encoding for Kind, used to
// persist an RLE-compressed kind storage in the chunk cache.
func KindCodec() storage.ValueCodec[Kind] {
	return storage.ValueCodec[Kind]{
		Size: 2,
		Encode: func(v Kind) []byte {
			b := make([]byte, 2)
			binary.BigEndian.PutUint16(b, uint16(v))
			return b
		},
		Decode: func(b []byte) Kind {
			return Kind(binary.BigEndian.Uint16(b))
		},
	}
}
