package mesh

import (
	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

// ComputeSoftLight is meshing stage 2. For every voxel that isn't fully
// occluded, each visible face gets four per-vertex light samples: the
// mean of the face-direction neighbor and the up-to-three voxels
// diagonally adjacent to that vertex's corner. Opaque samples contribute
// zero, and a corner sample is forced opaque when both of its edge
// neighbors are themselves opaque (the standard voxel AO corner rule).
// Light-emitting kinds skip sampling and report their own emission on
// every vertex of every face instead.
func ComputeSoftLight(n *Neighborhood, cat *catalog.Catalog, occlusion *storage.ChunkStorage[FacesOcclusion]) *storage.ChunkStorage[FacesSoftLight] {
	out := storage.New[FacesSoftLight]()
	n.Kinds.Iter(func(idx uint32, k catalog.Kind) {
		if cat.IsNone(k) {
			return
		}
		occ := occlusion.Get(idx)
		if occ.FullyOccludedValue() {
			return
		}
		v := coord.FromIndex(idx)

		var sl FacesSoftLight
		if cat.IsLightEmitter(k) {
			emission := float32(cat.LightEmission(k))
			for face := 0; face < 6; face++ {
				for vert := 0; vert < 4; vert++ {
					sl[face][vert] = emission
				}
			}
			out.Set(idx, sl)
			return
		}

		for face := 0; face < 6; face++ {
			d := coord.Direction(face)
			if occ.Face(d) {
				continue
			}
			fv := faceNormal(d)
			faceSample := n.intensity(v, int32(fv[0]), int32(fv[1]), int32(fv[2]), cat)
			for vert := 0; vert < 4; vert++ {
				off := aoTable[face][vert]
				side1Opaque, side1 := n.sampleIntensity(v, off.side1, cat)
				side2Opaque, side2 := n.sampleIntensity(v, off.side2, cat)
				var corner float32
				if side1Opaque && side2Opaque {
					corner = 0
				} else {
					_, corner = n.sampleIntensity(v, off.corner, cat)
				}
				sl[face][vert] = (faceSample + side1 + side2 + corner) / 4
			}
		}
		out.Set(idx, sl)
	})
	return out
}

// intensity samples the combined (max of channels) light intensity at an
// offset voxel, treating opaque voxels and unavailable samples as dark.
func (n *Neighborhood) intensity(v coord.Voxel, dx, dy, dz int32, cat *catalog.Catalog) float32 {
	_, f := n.sampleIntensity(v, [3]int32{dx, dy, dz}, cat)
	return f
}

// sampleIntensity returns whether the sampled voxel is opaque, and the
// light intensity to use for averaging (0 for opaque or unavailable
// samples).
func (n *Neighborhood) sampleIntensity(v coord.Voxel, off [3]int32, cat *catalog.Catalog) (opaque bool, value float32) {
	k, lt, ok := n.sample(v, off[0], off[1], off[2])
	if !ok {
		return false, 0
	}
	if cat.IsOpaque(k) {
		return true, 0
	}
	return false, float32(lt.Max())
}
