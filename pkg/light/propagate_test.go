package light

import (
	"strings"
	"testing"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(strings.NewReader("air,0,none,none,\nstone,1,all:s.png,opaque,gen\n"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSeedSetsTopSlab(t *testing.T) {
	lights := storage.New[Light]()
	frontier := Seed(lights)
	if len(frontier) != coord.SizeX*coord.SizeZ {
		t.Fatalf("frontier length = %d, want %d", len(frontier), coord.SizeX*coord.SizeZ)
	}
	for _, v := range frontier {
		if got := lights.GetVoxel(v).Get(Natural); got != MaxIntensity {
			t.Fatalf("top slab voxel %v has natural %d, want 15", v, got)
		}
	}
}

func TestPropagateDaylightColumnPreserved(t *testing.T) {
	cat := mustCatalog(t)
	kinds := storage.New[catalog.Kind]()
	lights := storage.New[Light]()
	frontier := Seed(lights)

	Propagate(coord.Chunk{}, cat, kinds, lights, frontier, Natural)

	for y := 0; y < coord.SizeY; y++ {
		v := coord.Voxel{X: 0, Y: uint8(y), Z: 0}
		if got := lights.GetVoxel(v).Get(Natural); got != MaxIntensity {
			t.Fatalf("empty column voxel y=%d has natural %d, want 15 (daylight preserved)", y, got)
		}
	}
}

func TestPropagateStopsAtOpaque(t *testing.T) {
	cat := mustCatalog(t)
	kinds := storage.New[catalog.Kind]()
	kinds.SetVoxel(coord.Voxel{X: 0, Y: 100, Z: 0}, 1) // stone, opaque
	lights := storage.New[Light]()
	frontier := Seed(lights)

	Propagate(coord.Chunk{}, cat, kinds, lights, frontier, Natural)

	above := lights.GetVoxel(coord.Voxel{X: 0, Y: 101, Z: 0}).Get(Natural)
	if above != MaxIntensity {
		t.Fatalf("voxel above the opaque block = %d, want 15", above)
	}
	below := lights.GetVoxel(coord.Voxel{X: 0, Y: 99, Z: 0}).Get(Natural)
	if below != 0 {
		t.Fatalf("voxel below the opaque block = %d, want 0 (blocked)", below)
	}
}

func TestPropagateEmitsCrossChunkEventsAtEdge(t *testing.T) {
	cat := mustCatalog(t)
	kinds := storage.New[catalog.Kind]()
	lights := storage.New[Light]()
	frontier := Seed(lights)

	events := Propagate(coord.Chunk{X: 0, Z: 0}, cat, kinds, lights, frontier, Natural)
	if len(events) == 0 {
		t.Fatal("expected cross-chunk events from the horizontal edges of the top slab")
	}
	for _, ev := range events {
		if ev.Chunk == (coord.Chunk{0, 0}) {
			t.Fatalf("cross-chunk event targets the source chunk: %+v", ev)
		}
	}
}

func TestApplyCrossChunkEventHonorsMonotonicity(t *testing.T) {
	cat := mustCatalog(t)
	kinds := storage.New[catalog.Kind]()
	lights := storage.New[Light]()
	v := coord.Voxel{X: 0, Y: 255, Z: 0}
	lights.SetVoxel(v, Light(0).Set(Natural, 15))

	ev := CrossChunkEvent{Chunk: coord.Chunk{}, Voxel: v, Intensity: 3, Channel: Natural}
	got := ApplyCrossChunkEvent(coord.Chunk{}, cat, kinds, lights, ev)
	if got != nil {
		t.Fatal("lowering an existing higher intensity should not happen or propagate further")
	}
	if lights.GetVoxel(v).Get(Natural) != 15 {
		t.Fatal("existing higher intensity must not be lowered")
	}
}

func TestArtificialChannelDecaysOnEveryNeighbor(t *testing.T) {
	cat := mustCatalog(t)
	kinds := storage.New[catalog.Kind]()
	lights := storage.New[Light]()
	origin := coord.Voxel{X: 8, Y: 128, Z: 8}
	lights.SetVoxel(origin, Light(0).Set(Artificial, 15))

	Propagate(coord.Chunk{}, cat, kinds, lights, []coord.Voxel{origin}, Artificial)

	up := lights.GetVoxel(coord.Voxel{X: 8, Y: 129, Z: 8}).Get(Artificial)
	down := lights.GetVoxel(coord.Voxel{X: 8, Y: 127, Z: 8}).Get(Artificial)
	if up != 14 || down != 14 {
		t.Fatalf("artificial light should decay by 1 on every side, got up=%d down=%d", up, down)
	}
}
