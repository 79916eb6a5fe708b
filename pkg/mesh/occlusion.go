package mesh

import (
	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

var sixDirections = [6]coord.Direction{
	coord.Right, coord.Left, coord.Up, coord.Down, coord.Front, coord.Back,
}

// ComputeOcclusion is meshing stage 1. Air voxels are written fully
// occluded. Every other voxel gets one bit per face: occluded when the
// neighbor on that side (wrapping into an adjacent chunk where needed)
// is itself non-empty. A face whose neighbor chunk has not loaded yet
// is left unoccluded — its geometry is regenerated once that neighbor
// arrives and the chunk remeshes.
func ComputeOcclusion(n *Neighborhood, cat *catalog.Catalog) *storage.ChunkStorage[FacesOcclusion] {
	out := storage.New[FacesOcclusion]()
	n.Kinds.Iter(func(idx uint32, k catalog.Kind) {
		if cat.IsNone(k) {
			out.Set(idx, FullyOccluded)
			return
		}
		v := coord.FromIndex(idx)
		var occ FacesOcclusion
		for _, d := range sixDirections {
			nk, ok := n.neighborKind(v, d)
			if !ok {
				continue
			}
			occ = occ.WithFace(d, !cat.IsNone(nk))
		}
		out.Set(idx, occ)
	})
	return out
}
