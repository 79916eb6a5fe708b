package world

import (
	"fmt"

	"github.com/leterax/voxelcore/pkg/coord"
)

// Map is the index-addressed arena described in the lifecycle pipeline's
// design notes: ChunkEntity values live densely in a slice, and
// Chunk -> slot is a plain hash map. Removal swaps the last entity into
// the freed slot, so Chunk lookups stay O(1) without ever compacting by
// shifting.
type Map struct {
	entities []*ChunkEntity
	index    map[coord.Chunk]int
}

// NewMap creates an empty chunk map.
func NewMap() *Map {
	return &Map{index: make(map[coord.Chunk]int)}
}

// Get returns the entity for c, if loaded.
func (m *Map) Get(c coord.Chunk) (*ChunkEntity, bool) {
	i, ok := m.index[c]
	if !ok {
		return nil, false
	}
	return m.entities[i], true
}

// Insert adds a new entity to the map. It panics on a duplicate
// coordinate: per §7 this is a programming error, caught here rather
// than silently overwriting a live chunk.
func (m *Map) Insert(e *ChunkEntity) {
	if _, exists := m.index[e.Coord]; exists {
		panic(fmt.Sprintf("world: duplicate chunk insert for %v", e.Coord))
	}
	m.index[e.Coord] = len(m.entities)
	m.entities = append(m.entities, e)
}

// Remove despawns the entity at c, if any.
func (m *Map) Remove(c coord.Chunk) {
	i, ok := m.index[c]
	if !ok {
		return
	}
	last := len(m.entities) - 1
	m.entities[i] = m.entities[last]
	m.index[m.entities[i].Coord] = i
	m.entities[last] = nil
	m.entities = m.entities[:last]
	delete(m.index, c)
}

// Len returns the number of loaded chunks.
func (m *Map) Len() int {
	return len(m.entities)
}

// Has reports whether c is currently loaded.
func (m *Map) Has(c coord.Chunk) bool {
	_, ok := m.index[c]
	return ok
}

// All calls fn for every loaded entity. fn must not insert into or
// remove from the map.
func (m *Map) All(fn func(*ChunkEntity)) {
	for _, e := range m.entities {
		fn(e)
	}
}

// Coords returns a snapshot of every currently loaded coordinate.
func (m *Map) Coords() []coord.Chunk {
	out := make([]coord.Chunk, 0, len(m.index))
	for c := range m.index {
		out = append(out, c)
	}
	return out
}
