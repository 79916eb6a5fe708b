package world

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/mesh"
	"github.com/leterax/voxelcore/pkg/protocol"
	"github.com/leterax/voxelcore/pkg/provider"
)

// Connection is the duplex surface the pipeline needs from a client
// connection. *server.Conn satisfies it; tests use a lighter fake so
// this package never imports pkg/server.
type Connection interface {
	Send(protocol.Message)
	Receive() []protocol.Message
	Closed() bool
}

type client struct {
	conn      Connection
	window    LandscapeWindow
	hasWindow bool
}

// Pipeline is the per-tick chunk lifecycle driver of §4.6: it owns the
// chunk Map, the set of connected clients and their landscape windows,
// and the generation/propagation/meshing/fan-out stages that advance
// every loaded chunk's state machine.
type Pipeline struct {
	cat      *catalog.Catalog
	prov     *provider.Provider
	table    *protocol.Table
	log      *log.Logger
	meshTick time.Duration
	lastMesh time.Time

	chunks *Map

	mu       sync.Mutex
	clients  map[uuid.UUID]*client
	explicit map[coord.Chunk]struct{}

	pending map[coord.Chunk]*provider.Handle
	inbox   []light.CrossChunkEvent
}

// NewPipeline builds an idle Pipeline. meshTickMs throttles the Meshing
// stage; a value <= 0 means "mesh every tick".
func NewPipeline(cat *catalog.Catalog, prov *provider.Provider, table *protocol.Table, meshTickMs int, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	p := &Pipeline{
		cat:      cat,
		prov:     prov,
		table:    table,
		log:      logger,
		meshTick: time.Duration(meshTickMs) * time.Millisecond,
		chunks:   NewMap(),
		clients:  make(map[uuid.UUID]*client),
		explicit: make(map[coord.Chunk]struct{}),
		pending:  make(map[coord.Chunk]*provider.Handle),
	}
	table.Handle(protocol.CodeLandscapeUpdate, p.onLandscapeUpdate)
	table.Handle(protocol.CodeChunkLoad, p.onChunkLoad)
	return p
}

// RegisterClient wires a newly accepted connection into the pipeline.
// Its landscape window starts empty, so it loads nothing until the
// client sends a LandscapeUpdate.
func (p *Pipeline) RegisterClient(id uuid.UUID, conn Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[id] = &client{conn: conn}
}

// UnregisterClient removes a disconnected client's window from the
// landscape union. Chunks only it wanted are unloaded on the next
// LandscapeUpdate stage.
func (p *Pipeline) UnregisterClient(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, id)
}

func (p *Pipeline) onLandscapeUpdate(id uuid.UUID, msg protocol.Message) {
	lu := msg.(protocol.LandscapeUpdate)
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.clients[id]
	if !ok {
		return
	}
	c.window = LandscapeWindow{Center: lu.Center, Radius: lu.Radius}.Clamped()
	c.hasWindow = true
}

func (p *Pipeline) onChunkLoad(id uuid.UUID, msg protocol.Message) {
	cl := msg.(protocol.ChunkLoad)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.explicit[cl.Chunk] = struct{}{}
}

// Tick runs the six stages of spec.md §4.6, in order, once.
func (p *Pipeline) Tick(now time.Time) {
	p.receive()
	p.landscapeUpdate()
	p.chunkManagement()
	p.propagation()
	if p.meshTick <= 0 || now.Sub(p.lastMesh) >= p.meshTick {
		p.meshing()
		p.lastMesh = now
	}
	p.sendResponses()
}

// receive drains every connection's decoded inbox and routes each
// message through the dispatch table. This is the only place handler
// invocation happens, so it only ever runs on the scheduler goroutine.
// A connection the transport has marked closed is unregistered here, so
// the following LandscapeUpdate stage stops counting its window.
func (p *Pipeline) receive() {
	p.mu.Lock()
	conns := make(map[uuid.UUID]Connection, len(p.clients))
	for id, c := range p.clients {
		conns[id] = c.conn
	}
	p.mu.Unlock()

	var dead []uuid.UUID
	for id, conn := range conns {
		for _, msg := range conn.Receive() {
			p.table.Route(id, msg)
		}
		if conn.Closed() {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		p.UnregisterClient(id)
	}
}

func (p *Pipeline) activeWindows() []LandscapeWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	windows := make([]LandscapeWindow, 0, len(p.clients))
	for _, c := range p.clients {
		if c.hasWindow {
			windows = append(windows, c.window)
		}
	}
	return windows
}

// landscapeUpdate recomputes the union of every connected client's
// window plus any outstanding explicit ChunkLoad hints, diffs it
// against the currently loaded set, and turns the result into load and
// unload requests (§4.6, S4).
func (p *Pipeline) landscapeUpdate() {
	windows := p.activeWindows()
	loaded := p.chunks.Coords()

	p.mu.Lock()
	extra := make([]coord.Chunk, 0, len(p.explicit))
	for c := range p.explicit {
		extra = append(extra, c)
	}
	p.mu.Unlock()

	load, unload := diffLandscape(loaded, windows, extra)

	for _, c := range load {
		p.requestLoad(c)
	}
	for _, c := range unload {
		p.requestUnload(c)
	}

	p.mu.Lock()
	for c := range p.explicit {
		if p.chunks.Has(c) {
			delete(p.explicit, c)
		}
	}
	p.mu.Unlock()
}

func (p *Pipeline) requestLoad(c coord.Chunk) {
	if p.chunks.Has(c) {
		return
	}
	if _, ok := p.pending[c]; ok {
		return
	}
	p.pending[c] = p.prov.Request(c)
}

func (p *Pipeline) requestUnload(c coord.Chunk) {
	delete(p.pending, c)
	p.chunks.Remove(c)
}

// chunkManagement collects every finished generation job and promotes it
// into a Lit ChunkEntity, advancing Absent/Requested/Generating -> Lit.
func (p *Pipeline) chunkManagement() {
	for c, h := range p.pending {
		if !h.Ready() {
			continue
		}
		delete(p.pending, c)

		asset, err := h.Result()
		if err != nil {
			p.log.Printf("world: generation failed for %v: %v", c, err)
			continue
		}
		kinds, err := provider.DecodeKinds(asset.Kind)
		if err != nil {
			p.log.Printf("world: decode kinds for %v: %v", c, err)
			continue
		}
		lights, err := provider.DecodeLights(asset.Light)
		if err != nil {
			p.log.Printf("world: decode lights for %v: %v", c, err)
			continue
		}

		entity := &ChunkEntity{Coord: c, State: Lit, Kind: kinds, Light: lights}
		entity.MarkDirty()
		p.chunks.Insert(entity)

		// A newly arrived chunk may un-occlude a face its horizontal
		// neighbors already meshed against "absent neighbor" rules, so
		// each already-loaded neighbor remeshes once against the real
		// data. This only needs to happen at arrival time: kind storage
		// never mutates afterward, so occlusion at a shared boundary is
		// stable once both sides have meshed with each other present.
		for _, d := range coord.Horizontal() {
			if ne, ok := p.chunks.Get(c.Neighbor(d)); ok {
				ne.MarkDirty()
			}
		}

		// The seeded frontier's own BFS runs immediately against this
		// chunk's freshly decoded storage; any resulting cross-chunk
		// events join the same queue the Propagation stage drains, so
		// they're honored next tick alongside events from other chunks.
		frontier := light.Seed(lights)
		events := light.Propagate(c, p.cat, kinds, lights, frontier, light.Natural)
		p.inbox = append(p.inbox, events...)
	}
}

// propagation drains cross-chunk light events queued by the previous
// tick's Propagate/ApplyCrossChunkEvent calls, applying each against its
// target chunk if loaded and re-queuing whatever that application
// produces in turn. Per the MarkDirty lifecycle contract, a chunk whose
// light actually changed dirties its own four horizontal neighbors too,
// so their soft light is recomputed against the new values next meshing
// pass, not just the chunk the event targeted.
func (p *Pipeline) propagation() {
	events := p.inbox
	p.inbox = nil

	for _, ev := range events {
		e, ok := p.chunks.Get(ev.Chunk)
		if !ok {
			// Target chunk isn't loaded (anymore, or yet); the event is
			// simply dropped — it will be regenerated by that chunk's
			// own Seed/Generate pass once it loads.
			continue
		}
		// ApplyCrossChunkEvent writes the event's own voxel whenever it
		// changes any light at all, so comparing that voxel tells whether
		// this chunk's light changed.
		before := e.Light.GetVoxel(ev.Voxel)
		more := light.ApplyCrossChunkEvent(ev.Chunk, p.cat, e.Kind, e.Light, ev)
		if e.Light.GetVoxel(ev.Voxel) != before {
			e.MarkDirty()
			for _, d := range coord.Horizontal() {
				if ne, ok := p.chunks.Get(ev.Chunk.Neighbor(d)); ok {
					ne.MarkDirty()
				}
			}
		}
		p.inbox = append(p.inbox, more...)
	}
}

// meshing recomputes occlusion, soft light, and the vertex stream for
// every dirty chunk, throttled by the caller to MeshTickMs. A chunk
// whose horizontal neighbor is still absent meshes anyway (unoccluded
// at that face) and gets remeshed once the neighbor arrives, since
// chunkManagement marks it dirty again at that point.
func (p *Pipeline) meshing() {
	var dirty []*ChunkEntity
	p.chunks.All(func(e *ChunkEntity) {
		if e.dirty {
			dirty = append(dirty, e)
		}
	})

	for _, e := range dirty {
		n := p.buildNeighborhood(e)
		e.Occlusion = mesh.ComputeOcclusion(n, p.cat)
		e.SoftLight = mesh.ComputeSoftLight(n, p.cat, e.Occlusion)
		e.Vertex = mesh.GenerateVertices(n, p.cat, e.Occlusion, e.SoftLight)
		e.dirty = false
		e.vertexChanged = true
		e.State = Meshed
	}
}

func (p *Pipeline) buildNeighborhood(e *ChunkEntity) *mesh.Neighborhood {
	n := &mesh.Neighborhood{Chunk: e.Coord, Kinds: e.Kind, Lights: e.Light}
	for _, d := range coord.Horizontal() {
		if ne, ok := p.chunks.Get(e.Coord.Neighbor(d)); ok {
			n.SetNeighbor(d, ne.Kind, ne.Light)
		}
	}
	return n
}

// sendResponses fans out every chunk whose vertex stream changed this
// tick to each client whose window currently contains it.
func (p *Pipeline) sendResponses() {
	var changed []*ChunkEntity
	p.chunks.All(func(e *ChunkEntity) {
		if e.vertexChanged {
			changed = append(changed, e)
		}
	})
	if len(changed) == 0 {
		return
	}

	p.mu.Lock()
	recipients := make([]*client, 0, len(p.clients))
	for _, c := range p.clients {
		if c.hasWindow {
			recipients = append(recipients, c)
		}
	}
	p.mu.Unlock()

	for _, e := range changed {
		msg := protocol.ChunkVertex{Chunk: e.Coord, Vertex: e.Vertex}
		for _, c := range recipients {
			if c.window.Contains(e.Coord) {
				c.conn.Send(msg)
			}
		}
		e.vertexChanged = false
	}
}
