package provider

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/storage"
	"github.com/leterax/voxelcore/pkg/worldgen"
)

// Handle is the one-shot completion a Request returns. The scheduler
// tick polls it with Ready/Result rather than blocking, so a stalled
// worker never stalls the pipeline.
type Handle struct {
	done   chan struct{}
	asset  ChunkAsset
	err    error
}

// Ready reports whether the job has finished.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Result returns the finished asset and error. Calling it before Ready
// reports true panics with a clear message, matching the "poll, don't
// block" contract the pipeline relies on.
func (h *Handle) Result() (ChunkAsset, error) {
	select {
	case <-h.done:
		return h.asset, h.err
	default:
		panic("provider: Result called on a Handle that is not Ready")
	}
}

// Provider is the async, cache-backed chunk generation service of §4.7.
// A single Provider is shared by the whole scheduler; Request
// deduplicates concurrent requests for the same coordinate.
type Provider struct {
	cat *catalog.Catalog
	gen *worldgen.Generator
	db  *leveldb.DB
	log *log.Logger

	jobs chan coord.Chunk

	mu       sync.Mutex
	inflight map[coord.Chunk]*Handle
}

// Open starts a Provider backed by the leveldb cache directory cacheDir,
// with numWorkers generation workers (runtime.NumCPU() if <= 0).
func Open(cat *catalog.Catalog, gen *worldgen.Generator, cacheDir string, numWorkers int, logger *log.Logger) (*Provider, error) {
	db, err := leveldb.OpenFile(cacheDir, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: open cache %q: %w", cacheDir, err)
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.Default()
	}
	p := &Provider{
		cat:      cat,
		gen:      gen,
		db:       db,
		log:      logger,
		jobs:     make(chan coord.Chunk, 256),
		inflight: make(map[coord.Chunk]*Handle),
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p, nil
}

// Close flushes and closes the cache database. Pending jobs run to
// completion; their results are simply never collected.
func (p *Provider) Close() error {
	close(p.jobs)
	return p.db.Close()
}

// Request returns the Handle for chunk, submitting a new generation job
// only if one isn't already outstanding for that coordinate.
func (p *Provider) Request(c coord.Chunk) *Handle {
	p.mu.Lock()
	if h, ok := p.inflight[c]; ok {
		p.mu.Unlock()
		return h
	}
	h := &Handle{done: make(chan struct{})}
	p.inflight[c] = h
	p.mu.Unlock()

	p.jobs <- c
	return h
}

func (p *Provider) worker() {
	for c := range p.jobs {
		asset, err := p.produce(c)

		p.mu.Lock()
		h := p.inflight[c]
		delete(p.inflight, c)
		p.mu.Unlock()

		h.asset, h.err = asset, err
		close(h.done)
	}
}

func (p *Provider) produce(c coord.Chunk) (ChunkAsset, error) {
	key := cacheKey(c)
	raw, err := p.db.Get(key, nil)
	switch {
	case err == nil:
		asset, decErr := DecodeAsset(raw)
		if decErr == nil && asset.Version == CurrentVersion {
			return asset, nil
		}
		if decErr != nil {
			p.log.Printf("provider: cache entry for %v failed to decode, regenerating: %v", c, decErr)
		} else {
			p.log.Printf("provider: cache entry for %v has version %d, want %d, regenerating", c, asset.Version, CurrentVersion)
		}
	case errors.Is(err, leveldb.ErrNotFound):
		// fall through to generation
	default:
		p.log.Printf("provider: cache read failed for %v: %v", c, err)
	}

	kinds := storage.New[catalog.Kind]()
	p.gen.Generate(c, kinds)

	// Only the natural-light frontier is seeded here; BFS propagation
	// happens in the pipeline, never off the scheduler goroutine: its
	// chunk-management stage runs the chunk's initial BFS, and its
	// Propagation stage applies the resulting cross-chunk events.
	lights := storage.New[light.Light]()
	light.Seed(lights)

	asset := newAsset(c, kinds, lights)
	if encoded, err := EncodeAsset(asset); err != nil {
		p.log.Printf("provider: failed to encode %v for caching: %v", c, err)
	} else if err := p.db.Put(key, encoded, nil); err != nil {
		p.log.Printf("provider: cache write failed for %v: %v", c, err)
	}
	return asset, nil
}

func cacheKey(c coord.Chunk) []byte {
	return []byte(fmt.Sprintf("%d_%d", c.X, c.Z))
}
