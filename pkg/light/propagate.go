package light

import (
	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

// CrossChunkEvent is emitted when a BFS step would propagate light past a
// chunk's horizontal edge. The pipeline collects these and re-dispatches
// them as a LightUpdate for the neighbor chunk on the following tick,
// rather than writing across chunk boundaries directly.
type CrossChunkEvent struct {
	Chunk     coord.Chunk
	Voxel     coord.Voxel
	Intensity uint8
	Channel   Channel
}

// Seed sets natural-light intensity 15 on every top-slab voxel of a newly
// generated chunk and returns those voxels as the initial BFS frontier.
func Seed(lights *storage.ChunkStorage[Light]) []coord.Voxel {
	frontier := make([]coord.Voxel, 0, coord.SizeX*coord.SizeZ)
	lights.IterTopSlab(func(v coord.Voxel, val Light) {
		lights.SetVoxel(v, val.Set(Natural, MaxIntensity))
		frontier = append(frontier, v)
	})
	return frontier
}

var allDirections = [6]coord.Direction{
	coord.Right, coord.Left, coord.Up, coord.Down, coord.Front, coord.Back,
}

// Propagate runs a cooperative BFS over a single chunk's light storage,
// seeded from frontier, for one channel. It mutates lights in place and
// returns the cross-chunk events produced when the BFS reaches an edge
// voxel. Only this one chunk's storage is ever written — propagation
// into neighbor chunks happens when the caller re-dispatches the
// returned events against those chunks on a later tick.
func Propagate(chunk coord.Chunk, cat *catalog.Catalog, kinds *storage.ChunkStorage[catalog.Kind], lights *storage.ChunkStorage[Light], frontier []coord.Voxel, channel Channel) []CrossChunkEvent {
	queue := append(make([]coord.Voxel, 0, len(frontier)), frontier...)
	var events []CrossChunkEvent

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		cur := lights.GetVoxel(v).Get(channel)

		for _, d := range allDirections {
			propagated := propagatedIntensity(cur, d, channel)
			if propagated == 0 {
				continue
			}

			step, ok := coord.Step(v, d)
			if ok {
				if cat.IsOpaque(kinds.GetVoxel(step)) {
					continue
				}
				existing := lights.GetVoxel(step)
				if existing.Get(channel) >= propagated {
					continue
				}
				lights.SetVoxel(step, existing.Set(channel, propagated))
				if propagated >= 2 {
					queue = append(queue, step)
				}
				continue
			}

			if d == coord.Up || d == coord.Down {
				continue // no vertical chunking: the column simply ends
			}

			_, wrapped := coord.WrapEdge(v, d)
			events = append(events, CrossChunkEvent{
				Chunk:     chunk.Neighbor(d),
				Voxel:     wrapped,
				Intensity: propagated,
				Channel:   channel,
			})
		}
	}

	return events
}

// ApplyCrossChunkEvent re-enters the propagator for a single incoming
// event against the neighbor chunk's own storage, honoring the
// monotonicity rule (never lower an existing intensity) before
// continuing the BFS from that point.
func ApplyCrossChunkEvent(chunk coord.Chunk, cat *catalog.Catalog, kinds *storage.ChunkStorage[catalog.Kind], lights *storage.ChunkStorage[Light], ev CrossChunkEvent) []CrossChunkEvent {
	if cat.IsOpaque(kinds.GetVoxel(ev.Voxel)) {
		return nil
	}
	existing := lights.GetVoxel(ev.Voxel)
	if existing.Get(ev.Channel) >= ev.Intensity {
		return nil
	}
	lights.SetVoxel(ev.Voxel, existing.Set(ev.Channel, ev.Intensity))
	if ev.Intensity < 2 {
		return nil
	}
	return Propagate(chunk, cat, kinds, lights, []coord.Voxel{ev.Voxel}, ev.Channel)
}

func propagatedIntensity(c uint8, d coord.Direction, channel Channel) uint8 {
	if channel == Natural && d == coord.Down && c == MaxIntensity {
		return MaxIntensity
	}
	if c == 0 {
		return 0
	}
	return c - 1
}
