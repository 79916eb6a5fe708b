package world

import (
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/protocol"
	"github.com/leterax/voxelcore/pkg/provider"
	"github.com/leterax/voxelcore/pkg/storage"
	"github.com/leterax/voxelcore/pkg/worldgen"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader("air,0,none,none,\nstone,3,all:s.png,opaque,gen\n"))
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cat := mustCatalog(t)
	prov, err := provider.Open(cat, worldgen.New(1), t.TempDir(), 2, log.New(nilWriter{}, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { prov.Close() })
	return NewPipeline(cat, prov, protocol.NewClientTable(), 0, log.New(nilWriter{}, "", 0))
}

type nilWriter struct{}

func (nilWriter) Write(b []byte) (int, error) { return len(b), nil }

// fakeConn is a Connection test double driven directly, without a real
// socket: inbound messages are queued by the test, outbound ones
// recorded for assertions.
type fakeConn struct {
	inbound  []protocol.Message
	outbound []protocol.Message
	closed   bool
}

func (c *fakeConn) Send(msg protocol.Message) { c.outbound = append(c.outbound, msg) }
func (c *fakeConn) Receive() []protocol.Message {
	out := c.inbound
	c.inbound = nil
	return out
}
func (c *fakeConn) Closed() bool { return c.closed }

func tickUntilSettled(p *Pipeline, maxTicks int) {
	now := time.Time{}
	for i := 0; i < maxTicks; i++ {
		now = now.Add(time.Millisecond)
		p.Tick(now)
		if len(p.pending) == 0 {
			// Drain a couple more ticks so in-flight generation jobs that
			// just became ready also get meshed and sent.
			for j := 0; j < 3; j++ {
				now = now.Add(time.Millisecond)
				p.Tick(now)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// S4: a LandscapeUpdate with radius 1 loads the 3x3 window (9 chunks,
// nothing unloaded); shifting the window by one chunk unloads the 3
// columns that fell out of range and loads the 3 new ones.
func TestLandscapeWindowDiffOverTicks(t *testing.T) {
	p := newTestPipeline(t)
	id := uuid.New()
	conn := &fakeConn{}
	p.RegisterClient(id, conn)

	conn.inbound = []protocol.Message{protocol.LandscapeUpdate{Center: coord.Chunk{X: 0, Z: 0}, Radius: 1}}
	tickUntilSettled(p, 50)

	if p.chunks.Len() != 9 {
		t.Fatalf("loaded %d chunks, want 9", p.chunks.Len())
	}

	conn.inbound = []protocol.Message{protocol.LandscapeUpdate{Center: coord.Chunk{X: 1, Z: 0}, Radius: 1}}
	tickUntilSettled(p, 50)

	if p.chunks.Len() != 9 {
		t.Fatalf("after shift, loaded %d chunks, want 9", p.chunks.Len())
	}
	for x := int32(0); x <= 2; x++ {
		for z := int32(-1); z <= 1; z++ {
			if !p.chunks.Has(coord.Chunk{X: x, Z: z}) {
				t.Fatalf("expected chunk {%d,%d} to be loaded after the window shift", x, z)
			}
		}
	}
	if p.chunks.Has(coord.Chunk{X: -1, Z: -1}) {
		t.Fatal("chunk that fell out of the shifted window should have unloaded")
	}
}

// A radius beyond MaxRadius is clamped rather than rejected.
func TestLandscapeUpdateRadiusIsClamped(t *testing.T) {
	p := newTestPipeline(t)
	id := uuid.New()
	conn := &fakeConn{}
	p.RegisterClient(id, conn)

	conn.inbound = []protocol.Message{protocol.LandscapeUpdate{Center: coord.Chunk{}, Radius: 200}}
	p.Tick(time.Time{})

	p.mu.Lock()
	got := p.clients[id].window.Radius
	p.mu.Unlock()
	if got != MaxRadius {
		t.Fatalf("window radius = %d, want clamped to %d", got, MaxRadius)
	}
}

// Once a client's window covers a chunk, generation -> meshing ->
// fan-out runs end to end and the client receives a ChunkVertex.
func TestLoadedChunkIsMeshedAndSentToClient(t *testing.T) {
	p := newTestPipeline(t)
	id := uuid.New()
	conn := &fakeConn{}
	p.RegisterClient(id, conn)

	conn.inbound = []protocol.Message{protocol.LandscapeUpdate{Center: coord.Chunk{}, Radius: 0}}
	tickUntilSettled(p, 50)

	e, ok := p.chunks.Get(coord.Chunk{})
	if !ok {
		t.Fatal("chunk {0,0} should have loaded")
	}
	if e.State != Meshed {
		t.Fatalf("chunk state = %v, want Meshed", e.State)
	}

	var sawVertex bool
	for _, msg := range conn.outbound {
		if cv, ok := msg.(protocol.ChunkVertex); ok && cv.Chunk == (coord.Chunk{}) {
			sawVertex = true
		}
	}
	if !sawVertex {
		t.Fatal("client should have received a ChunkVertex for the loaded chunk")
	}
}

// A ChunkLoad hint outside any window still triggers a one-shot load.
func TestChunkLoadHintLoadsOutsideWindow(t *testing.T) {
	p := newTestPipeline(t)
	id := uuid.New()
	conn := &fakeConn{}
	p.RegisterClient(id, conn)

	far := coord.Chunk{X: 1000, Z: 1000}
	conn.inbound = []protocol.Message{protocol.ChunkLoad{Chunk: far}}
	tickUntilSettled(p, 50)

	if !p.chunks.Has(far) {
		t.Fatal("ChunkLoad hint should load the named chunk even without a covering window")
	}
}

// S5 (integration level): applying a cross-chunk light event that keeps
// propagating dirties not just the chunk the event targeted but that
// chunk's own loaded horizontal neighbors too, per the MarkDirty
// lifecycle contract, so a steady-state light change still reaches a
// shared chunk boundary's soft light on the next meshing pass.
func TestPropagationDirtiesNeighborsOfAppliedChunk(t *testing.T) {
	p := newTestPipeline(t)

	target := &ChunkEntity{
		Coord: coord.Chunk{X: 0, Z: 0},
		Kind:  storage.New[catalog.Kind](),
		Light: storage.New[light.Light](),
	}
	neighbor := &ChunkEntity{
		Coord: coord.Chunk{X: 1, Z: 0},
		Kind:  storage.New[catalog.Kind](),
		Light: storage.New[light.Light](),
	}
	p.chunks.Insert(target)
	p.chunks.Insert(neighbor)
	target.dirty = false
	neighbor.dirty = false

	// An edge voxel of the target chunk receiving enough intensity to
	// keep propagating produces a further cross-chunk event toward the
	// Right neighbor, which is loaded.
	p.inbox = []light.CrossChunkEvent{{
		Chunk:     target.Coord,
		Voxel:     coord.Voxel{X: coord.SizeX - 1, Y: 100, Z: 0},
		Intensity: 10,
		Channel:   light.Natural,
	}}

	p.propagation()

	if !target.dirty {
		t.Fatal("chunk receiving the light event should be dirtied")
	}
	if !neighbor.dirty {
		t.Fatal("loaded horizontal neighbor of the applied chunk should be dirtied too")
	}
}

// Disconnecting a client whose window was the only reason a chunk was
// loaded eventually unloads it.
func TestUnregisterClientUnloadsItsWindow(t *testing.T) {
	p := newTestPipeline(t)
	id := uuid.New()
	conn := &fakeConn{}
	p.RegisterClient(id, conn)

	conn.inbound = []protocol.Message{protocol.LandscapeUpdate{Center: coord.Chunk{}, Radius: 0}}
	tickUntilSettled(p, 50)
	if p.chunks.Len() != 1 {
		t.Fatalf("loaded %d chunks, want 1", p.chunks.Len())
	}

	p.UnregisterClient(id)
	p.Tick(time.Time{})

	if p.chunks.Len() != 0 {
		t.Fatalf("after disconnect, loaded %d chunks, want 0", p.chunks.Len())
	}
}
