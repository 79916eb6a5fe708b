package mesh

import (
	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/storage"
)

// Neighborhood bundles one chunk's kind and light storage together with
// up to four horizontally adjacent chunks' storages, nil where a
// neighbor has not been loaded yet. Meshing only ever reads from a
// Neighborhood; it never writes into a neighbor's storage.
type Neighborhood struct {
	Chunk  coord.Chunk
	Kinds  *storage.ChunkStorage[catalog.Kind]
	Lights *storage.ChunkStorage[light.Light]

	// Indexed by horizontalIndex(d) for d in coord.Horizontal().
	NeighborKinds  [4]*storage.ChunkStorage[catalog.Kind]
	NeighborLights [4]*storage.ChunkStorage[light.Light]
}

func horizontalIndex(d coord.Direction) int {
	switch d {
	case coord.Right:
		return 0
	case coord.Left:
		return 1
	case coord.Front:
		return 2
	default: // coord.Back
		return 3
	}
}

// SetNeighbor wires up the storages of the chunk adjacent to n in
// direction d.
func (n *Neighborhood) SetNeighbor(d coord.Direction, kinds *storage.ChunkStorage[catalog.Kind], lights *storage.ChunkStorage[light.Light]) {
	idx := horizontalIndex(d)
	n.NeighborKinds[idx] = kinds
	n.NeighborLights[idx] = lights
}

// sample reads the kind and light of the voxel offset (dx,dy,dz) from v.
// ok is false only when the sample would require data this Neighborhood
// does not carry: a neighbor chunk that has not been loaded, or a
// diagonal (both X and Z) crossing into a chunk this Neighborhood has no
// handle to at all.
func (n *Neighborhood) sample(v coord.Voxel, dx, dy, dz int32) (k catalog.Kind, lt light.Light, ok bool) {
	x := int32(v.X) + dx
	y := int32(v.Y) + dy
	z := int32(v.Z) + dz

	if y < 0 {
		return catalog.KindNone, light.Light(0), true
	}
	if y >= coord.SizeY {
		return catalog.KindNone, light.Light(0).Set(light.Natural, light.MaxIntensity), true
	}

	wrapX := x < 0 || x >= coord.SizeX
	wrapZ := z < 0 || z >= coord.SizeZ

	if !wrapX && !wrapZ {
		vv := coord.Voxel{X: uint8(x), Y: uint8(y), Z: uint8(z)}
		return n.Kinds.GetVoxel(vv), n.Lights.GetVoxel(vv), true
	}
	if wrapX && wrapZ {
		return catalog.KindNone, light.Light(0), false
	}

	var dir coord.Direction
	if wrapX {
		if x < 0 {
			dir, x = coord.Left, coord.SizeX-1
		} else {
			dir, x = coord.Right, 0
		}
	} else {
		if z < 0 {
			dir, z = coord.Back, coord.SizeZ-1
		} else {
			dir, z = coord.Front, 0
		}
	}

	idx := horizontalIndex(dir)
	nk := n.NeighborKinds[idx]
	if nk == nil {
		return catalog.KindNone, light.Light(0), false
	}
	vv := coord.Voxel{X: uint8(x), Y: uint8(y), Z: uint8(z)}
	var lv light.Light
	if nl := n.NeighborLights[idx]; nl != nil {
		lv = nl.GetVoxel(vv)
	}
	return nk.GetVoxel(vv), lv, true
}

func (n *Neighborhood) neighborKind(v coord.Voxel, d coord.Direction) (catalog.Kind, bool) {
	off := d.Vector()
	k, _, ok := n.sample(v, off.X, off.Y, off.Z)
	return k, ok
}
