// Package world implements the chunk lifecycle pipeline: the
// landscape-window diff, the chunk map, and the staged per-tick schedule
// that drives generation, light propagation, meshing, and client
// fan-out.
package world

import (
	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/mesh"
	"github.com/leterax/voxelcore/pkg/storage"
)

// State is a chunk coordinate's position in the lifecycle state machine:
// Absent -> Requested -> Generating -> Lit -> Meshed -> (dirty loop) ->
// Unloading -> Absent.
type State uint8

const (
	Absent State = iota
	Requested
	Generating
	Lit
	Meshed
	Unloading
)

func (s State) String() string {
	switch s {
	case Absent:
		return "Absent"
	case Requested:
		return "Requested"
	case Generating:
		return "Generating"
	case Lit:
		return "Lit"
	case Meshed:
		return "Meshed"
	case Unloading:
		return "Unloading"
	default:
		return "Unknown"
	}
}

// ChunkEntity is the logical record the pipeline owns per loaded chunk:
// its aligned storages, current vertex stream, and lifecycle state.
type ChunkEntity struct {
	Coord coord.Chunk
	State State

	Kind      *storage.ChunkStorage[catalog.Kind]
	Light     *storage.ChunkStorage[light.Light]
	Occlusion *storage.ChunkStorage[mesh.FacesOcclusion]
	SoftLight *storage.ChunkStorage[mesh.FacesSoftLight]
	Vertex    []mesh.Vertex

	// dirty is set whenever Kind or Light changes and cleared once the
	// chunk has been remeshed.
	dirty bool
	// vertexChanged is set once meshing produces a new Vertex stream and
	// cleared once SendResponses has fanned it out.
	vertexChanged bool
}

// MarkDirty flags this chunk alone for remeshing on the next throttled
// Meshing stage. Its horizontal neighbors are not touched; callers that
// need them remeshed too mark each of them separately.
func (e *ChunkEntity) MarkDirty() {
	e.dirty = true
}
