package world

import (
	"sort"

	"github.com/leterax/voxelcore/pkg/coord"
)

// MaxRadius bounds a LandscapeWindow's radius (spec.md Open Question,
// resolved: a LandscapeUpdate naming a larger radius is clamped rather
// than rejected as a framing error).
const MaxRadius = 64

// LandscapeWindow is a client's (2r+1)^2 square of chunks of interest.
type LandscapeWindow struct {
	Center coord.Chunk
	Radius uint8
}

// Clamped returns w with Radius bounded to MaxRadius.
func (w LandscapeWindow) Clamped() LandscapeWindow {
	if w.Radius > MaxRadius {
		w.Radius = MaxRadius
	}
	return w
}

// Contains reports whether c lies within the window's square.
func (w LandscapeWindow) Contains(c coord.Chunk) bool {
	r := int32(w.Radius)
	dx := c.X - w.Center.X
	dz := c.Z - w.Center.Z
	return dx >= -r && dx <= r && dz >= -r && dz <= r
}

// Chunks enumerates every coordinate in the window, in no particular
// order.
func (w LandscapeWindow) Chunks() []coord.Chunk {
	r := int32(w.Radius)
	out := make([]coord.Chunk, 0, (2*r+1)*(2*r+1))
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			out = append(out, coord.Chunk{X: w.Center.X + dx, Z: w.Center.Z + dz})
		}
	}
	return out
}

// diffLandscape computes the symmetric difference between the currently
// loaded coordinates and the desired set: the union of every window in
// windows plus any standalone coordinates in extra (explicit ChunkLoad
// hints). Both result slices are sorted by ascending squared distance
// to the nearest window center, per §4.6.
func diffLandscape(loaded []coord.Chunk, windows []LandscapeWindow, extra []coord.Chunk) (load, unload []coord.Chunk) {
	desired := make(map[coord.Chunk]struct{})
	for _, w := range windows {
		for _, c := range w.Chunks() {
			desired[c] = struct{}{}
		}
	}
	for _, c := range extra {
		desired[c] = struct{}{}
	}

	current := make(map[coord.Chunk]struct{}, len(loaded))
	for _, c := range loaded {
		current[c] = struct{}{}
	}

	for c := range desired {
		if _, ok := current[c]; !ok {
			load = append(load, c)
		}
	}
	for c := range current {
		if _, ok := desired[c]; !ok {
			unload = append(unload, c)
		}
	}

	sortByNearestWindow(load, windows)
	sortByNearestWindow(unload, windows)
	return load, unload
}

func sortByNearestWindow(chunks []coord.Chunk, windows []LandscapeWindow) {
	keys := make(map[coord.Chunk]int64, len(chunks))
	for _, c := range chunks {
		best := int64(-1)
		for _, w := range windows {
			d := c.DistSquared(w.Center)
			if best < 0 || d < best {
				best = d
			}
		}
		keys[c] = best
	}
	sort.Slice(chunks, func(i, j int) bool {
		return keys[chunks[i]] < keys[chunks[j]]
	})
}
