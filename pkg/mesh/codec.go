package mesh

import (
	"encoding/binary"
	"math"

	"github.com/leterax/voxelcore/pkg/storage"
)

// OcclusionCodec returns the fixed-width wire encoding for FacesOcclusion.
func OcclusionCodec() storage.ValueCodec[FacesOcclusion] {
	return storage.ValueCodec[FacesOcclusion]{
		Size:   1,
		Encode: func(v FacesOcclusion) []byte { return []byte{byte(v)} },
		Decode: func(b []byte) FacesOcclusion { return FacesOcclusion(b[0]) },
	}
}

// SoftLightCodec returns the fixed-width wire encoding for FacesSoftLight:
// 6 faces x 4 vertices x 4 bytes (big-endian float32 bit pattern) = 96
// bytes.
func SoftLightCodec() storage.ValueCodec[FacesSoftLight] {
	const size = 6 * 4 * 4
	return storage.ValueCodec[FacesSoftLight]{
		Size: size,
		Encode: func(v FacesSoftLight) []byte {
			b := make([]byte, 0, size)
			for face := 0; face < 6; face++ {
				for vert := 0; vert < 4; vert++ {
					var w [4]byte
					binary.BigEndian.PutUint32(w[:], math.Float32bits(v[face][vert]))
					b = append(b, w[:]...)
				}
			}
			return b
		},
		Decode: func(b []byte) FacesSoftLight {
			var v FacesSoftLight
			for face := 0; face < 6; face++ {
				for vert := 0; vert < 4; vert++ {
					off := (face*4 + vert) * 4
					v[face][vert] = math.Float32frombits(binary.BigEndian.Uint32(b[off : off+4]))
				}
			}
			return v
		},
	}
}
