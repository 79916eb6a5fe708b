package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

// uvTable is the texcoord of each of a face's 4 vertices, matching the
// winding order of sideVertexTable.
var uvTable = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

const maxLightIntensity = 15

// GenerateVertices is meshing stage 3. For every voxel with at least one
// visible face, it emits that face's quad as 4 vertices in the fixed
// CCW winding of sideVertexTable, carrying the face normal, texture
// coordinates, and the stage-2 smoothed light divided down to [0,1].
// The caller triangulates each quad as [0,1,2, 2,3,0].
//
// uv and tile_coord_start are both scaled by the catalog's atlas tile
// size: uv is the unit quad scaled down to one tile's footprint, and
// tile_coord_start is the kind face's atlas tile offset scaled the same
// way, so uv+tile_coord_start addresses the right tile in the shared
// atlas texture.
func GenerateVertices(n *Neighborhood, cat *catalog.Catalog, occlusion *storage.ChunkStorage[FacesOcclusion], softLight *storage.ChunkStorage[FacesSoftLight]) []Vertex {
	tileSize := cat.TileSize()
	var verts []Vertex
	n.Kinds.Iter(func(idx uint32, k catalog.Kind) {
		if cat.IsNone(k) {
			return
		}
		occ := occlusion.Get(idx)
		if occ.FullyOccludedValue() {
			return
		}
		v := coord.FromIndex(idx)
		base := mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
		sl := softLight.Get(idx)

		for face := 0; face < 6; face++ {
			d := coord.Direction(face)
			if occ.Face(d) {
				continue
			}
			normal := faceNormal(d)
			offset := cat.TileOffsetFor(k, catalog.Side(d))
			tileCoordStart := mgl32.Vec2{float32(offset.X) * tileSize, float32(offset.Y) * tileSize}

			for i, cornerIdx := range sideVertexTable[face] {
				corner := cubeCorners[cornerIdx]
				lv := sl[face][i] / maxLightIntensity
				verts = append(verts, Vertex{
					Position:       base.Add(corner),
					Normal:         normal,
					UV:             uvTable[i].Mul(tileSize),
					TileCoordStart: tileCoordStart,
					Light:          mgl32.Vec3{lv, lv, lv},
				})
			}
		}
	})
	return verts
}
