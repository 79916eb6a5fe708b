// Package provider implements the async, cache-backed chunk generation
// service consumed by the lifecycle pipeline's chunk-management stage.
package provider

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/light"
	"github.com/leterax/voxelcore/pkg/mesh"
	"github.com/leterax/voxelcore/pkg/storage"
)

// CurrentVersion guards the on-disk cache schema. A cache entry whose
// Version doesn't match is discarded and the chunk is regenerated,
// rather than risking a decode of a stale layout.
const CurrentVersion byte = 1

// ChunkAsset is the unit of work a Provider produces and persists: the
// RLE-encoded kind and light storages (always present), plus fields for
// the post-meshing products. The Provider never fills the post-meshing
// fields and the pipeline never writes meshed chunks back to the cache,
// so they are always empty; the pipeline recomputes occlusion, soft
// light, and vertices itself after loading.
type ChunkAsset struct {
	Version   byte
	Chunk     coord.Chunk
	Kind      []byte
	Light     []byte
	Occlusion []byte
	SoftLight []byte
	Vertex    []mesh.Vertex
}

// EncodeAsset serializes a ChunkAsset for the persisted cache.
func EncodeAsset(a ChunkAsset) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, fmt.Errorf("provider: encode asset: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeAsset deserializes a ChunkAsset previously produced by EncodeAsset.
func DecodeAsset(b []byte) (ChunkAsset, error) {
	var a ChunkAsset
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&a); err != nil {
		return ChunkAsset{}, fmt.Errorf("provider: decode asset: %w", err)
	}
	return a, nil
}

func encodeKinds(kinds *storage.ChunkStorage[catalog.Kind]) []byte {
	return storage.EncodeRuns(storage.Compress(kinds), catalog.KindCodec())
}

func encodeLights(lights *storage.ChunkStorage[light.Light]) []byte {
	return storage.EncodeRuns(storage.Compress(lights), light.Codec())
}

// DecodeKinds reverses encodeKinds, used by the lifecycle pipeline once a
// ChunkAsset resolves.
func DecodeKinds(b []byte) (*storage.ChunkStorage[catalog.Kind], error) {
	runs, err := storage.DecodeRuns(b, catalog.KindCodec())
	if err != nil {
		return nil, fmt.Errorf("provider: decode kinds: %w", err)
	}
	return storage.Decompress(runs)
}

// DecodeLights reverses encodeLights.
func DecodeLights(b []byte) (*storage.ChunkStorage[light.Light], error) {
	runs, err := storage.DecodeRuns(b, light.Codec())
	if err != nil {
		return nil, fmt.Errorf("provider: decode lights: %w", err)
	}
	return storage.Decompress(runs)
}

func newAsset(c coord.Chunk, kinds *storage.ChunkStorage[catalog.Kind], lights *storage.ChunkStorage[light.Light]) ChunkAsset {
	return ChunkAsset{
		Version: CurrentVersion,
		Chunk:   c,
		Kind:    encodeKinds(kinds),
		Light:   encodeLights(lights),
	}
}
