// Package mesh implements the three meshing stages described by the
// world core: per-face occlusion, per-vertex smooth lighting, and vertex
// stream synthesis for client rendering.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/voxelcore/pkg/coord"
)

// FacesOcclusion is a 6-bit field, one bit per cubic face. "Fully
// occluded" means all six bits are set.
type FacesOcclusion uint8

// FullyOccluded is the value written for an empty (air) voxel.
const FullyOccluded FacesOcclusion = 0b111111

func faceBit(d coord.Direction) FacesOcclusion {
	return 1 << uint(d)
}

// WithFace returns occlusion with the given face's bit set to occluded.
func (o FacesOcclusion) WithFace(d coord.Direction, occluded bool) FacesOcclusion {
	if occluded {
		return o | faceBit(d)
	}
	return o &^ faceBit(d)
}

// Face reports whether a given face is occluded.
func (o FacesOcclusion) Face(d coord.Direction) bool {
	return o&faceBit(d) != 0
}

// FullyOccludedValue reports whether every face is occluded.
func (o FacesOcclusion) FullyOccludedValue() bool {
	return o == FullyOccluded
}

// FacesSoftLight holds, for each of the six faces, the four per-vertex
// smoothed light intensities (0..15, pre-division corner AO values).
type FacesSoftLight [6][4]float32

// Vertex is one element of a chunk's vertex stream. Vertex order per
// face is counter-clockwise when viewed from outside; quads are later
// indexed [0,1,2, 2,3,0] by the client.
type Vertex struct {
	Position       mgl32.Vec3
	Normal         mgl32.Vec3
	UV             mgl32.Vec2
	TileCoordStart mgl32.Vec2
	Light          mgl32.Vec3
}

// cubeCorners are the 8 unit-cube corner offsets indexed 0..7: the four
// z=0 corners counter-clockwise from the origin in the XY plane (0..3),
// then the same four at z=1 (4..7).
var cubeCorners = [8]mgl32.Vec3{
	{0, 0, 0}, // 0
	{1, 0, 0}, // 1
	{1, 1, 0}, // 2
	{0, 1, 0}, // 3
	{0, 0, 1}, // 4
	{1, 0, 1}, // 5
	{1, 1, 1}, // 6
	{0, 1, 1}, // 7
}

// sideVertexTable maps each of the six faces to the four corner indices
// of its quad, in CCW order as seen from outside the cube.
var sideVertexTable = [6][4]int{
	coord.Right: {1, 2, 6, 5},
	coord.Left:  {0, 4, 7, 3},
	coord.Up:    {3, 7, 6, 2},
	coord.Down:  {0, 1, 5, 4},
	coord.Front: {4, 5, 6, 7},
	coord.Back:  {0, 3, 2, 1},
}

func faceNormal(d coord.Direction) mgl32.Vec3 {
	v := d.Vector()
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// aoOffsets are the two side offsets and the corner offset used to sample
// smooth light for one vertex of one face, relative to the voxel's own
// cell. The face-direction sample itself is the same for all 4 vertices
// of a face and is taken separately (faceNormal).
type aoOffsets struct {
	side1, side2, corner [3]int32
}

// aoTable[face][vertex] gives the AO sample offsets for that corner,
// derived from sideVertexTable and the two in-plane axes of each face.
var aoTable = buildAOTable()

func buildAOTable() [6][4]aoOffsets {
	var table [6][4]aoOffsets
	for face := 0; face < 6; face++ {
		d := coord.Direction(face)
		axis1, axis2 := inPlaneAxes(d)
		for i, cornerIdx := range sideVertexTable[face] {
			c := cubeCorners[cornerIdx]
			var side1, side2, corner [3]int32
			side1[axis1] = signOf(c, axis1)
			side2[axis2] = signOf(c, axis2)
			corner[axis1] = side1[axis1]
			corner[axis2] = side2[axis2]
			table[face][i] = aoOffsets{side1: side1, side2: side2, corner: corner}
		}
	}
	return table
}

func inPlaneAxes(d coord.Direction) (int, int) {
	switch d {
	case coord.Right, coord.Left:
		return 1, 2 // Y, Z
	case coord.Up, coord.Down:
		return 0, 2 // X, Z
	default:
		return 0, 1 // X, Y
	}
}

func signOf(c mgl32.Vec3, axis int) int32 {
	if c[axis] >= 0.5 {
		return 1
	}
	return -1
}
