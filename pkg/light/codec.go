package light

import "github.com/leterax/voxelcore/pkg/storage"

// Codec returns the fixed-width wire encoding for Light, used to persist
// an RLE-compressed light storage in the chunk cache.
func Codec() storage.ValueCodec[Light] {
	return storage.ValueCodec[Light]{
		Size:   1,
		Encode: func(v Light) []byte { return []byte{byte(v)} },
		Decode: func(b []byte) Light { return Light(b[0]) },
	}
}
