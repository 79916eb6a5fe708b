package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/mesh"
)

// Message is any decoded wire message, in either direction.
type Message interface {
	Code() uint16
	Encode() []byte
}

// Client -> server message codes.
const (
	CodeChunkLoad       uint16 = 0
	CodeLandscapeUpdate uint16 = 1
)

// Server -> client message codes.
const (
	CodeChunkVertex uint16 = 0
)

// ChunkLoad is a client hint that it wants a specific chunk (§6).
type ChunkLoad struct {
	Chunk coord.Chunk
}

func (m ChunkLoad) Code() uint16 { return CodeChunkLoad }

func (m ChunkLoad) Encode() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(m.Chunk.X))
	binary.BigEndian.PutUint32(b[4:8], uint32(m.Chunk.Z))
	return b
}

// DecodeChunkLoad decodes a ChunkLoad payload.
func DecodeChunkLoad(b []byte) (Message, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("protocol: ChunkLoad payload is %d bytes, want 8", len(b))
	}
	return ChunkLoad{Chunk: coord.Chunk{
		X: int32(binary.BigEndian.Uint32(b[0:4])),
		Z: int32(binary.BigEndian.Uint32(b[4:8])),
	}}, nil
}

// LandscapeUpdate replaces a client's window of interest (§6).
type LandscapeUpdate struct {
	Center coord.Chunk
	Radius uint8
}

func (m LandscapeUpdate) Code() uint16 { return CodeLandscapeUpdate }

func (m LandscapeUpdate) Encode() []byte {
	b := make([]byte, 9)
	binary.BigEndian.PutUint32(b[0:4], uint32(m.Center.X))
	binary.BigEndian.PutUint32(b[4:8], uint32(m.Center.Z))
	b[8] = m.Radius
	return b
}

// DecodeLandscapeUpdate decodes a LandscapeUpdate payload.
func DecodeLandscapeUpdate(b []byte) (Message, error) {
	if len(b) != 9 {
		return nil, fmt.Errorf("protocol: LandscapeUpdate payload is %d bytes, want 9", len(b))
	}
	return LandscapeUpdate{
		Center: coord.Chunk{
			X: int32(binary.BigEndian.Uint32(b[0:4])),
			Z: int32(binary.BigEndian.Uint32(b[4:8])),
		},
		Radius: b[8],
	}, nil
}

// ChunkVertex carries a chunk's new or updated vertex stream (§6).
type ChunkVertex struct {
	Chunk  coord.Chunk
	Vertex []mesh.Vertex
}

func (m ChunkVertex) Code() uint16 { return CodeChunkVertex }

const vertexSize = 13 * 4 // 3+3+2+2+3 float32 components

func (m ChunkVertex) Encode() []byte {
	b := make([]byte, 8+4+len(m.Vertex)*vertexSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(m.Chunk.X))
	binary.BigEndian.PutUint32(b[4:8], uint32(m.Chunk.Z))
	binary.BigEndian.PutUint32(b[8:12], uint32(len(m.Vertex)))
	off := 12
	for _, v := range m.Vertex {
		off = putVec3(b, off, v.Position)
		off = putVec3(b, off, v.Normal)
		off = putVec2(b, off, v.UV)
		off = putVec2(b, off, v.TileCoordStart)
		off = putVec3(b, off, v.Light)
	}
	return b
}

// DecodeChunkVertex decodes a ChunkVertex payload.
func DecodeChunkVertex(b []byte) (Message, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("protocol: ChunkVertex payload is %d bytes, want at least 12", len(b))
	}
	chunk := coord.Chunk{
		X: int32(binary.BigEndian.Uint32(b[0:4])),
		Z: int32(binary.BigEndian.Uint32(b[4:8])),
	}
	n := binary.BigEndian.Uint32(b[8:12])
	want := 12 + int(n)*vertexSize
	if len(b) != want {
		return nil, fmt.Errorf("protocol: ChunkVertex payload is %d bytes, want %d for %d vertices", len(b), want, n)
	}
	verts := make([]mesh.Vertex, n)
	off := 12
	for i := range verts {
		var v mesh.Vertex
		v.Position, off = getVec3(b, off)
		v.Normal, off = getVec3(b, off)
		v.UV, off = getVec2(b, off)
		v.TileCoordStart, off = getVec2(b, off)
		v.Light, off = getVec3(b, off)
		verts[i] = v
	}
	return ChunkVertex{Chunk: chunk, Vertex: verts}, nil
}

func putFloat32(b []byte, off int, f float32) int {
	binary.BigEndian.PutUint32(b[off:off+4], math.Float32bits(f))
	return off + 4
}

func getFloat32(b []byte, off int) (float32, int) {
	return math.Float32frombits(binary.BigEndian.Uint32(b[off : off+4])), off + 4
}

func putVec3(b []byte, off int, v mgl32.Vec3) int {
	off = putFloat32(b, off, v[0])
	off = putFloat32(b, off, v[1])
	off = putFloat32(b, off, v[2])
	return off
}

func getVec3(b []byte, off int) (mgl32.Vec3, int) {
	var v mgl32.Vec3
	v[0], off = getFloat32(b, off)
	v[1], off = getFloat32(b, off)
	v[2], off = getFloat32(b, off)
	return v, off
}

func putVec2(b []byte, off int, v mgl32.Vec2) int {
	off = putFloat32(b, off, v[0])
	off = putFloat32(b, off, v[1])
	return off
}

func getVec2(b []byte, off int) (mgl32.Vec2, int) {
	var v mgl32.Vec2
	v[0], off = getFloat32(b, off)
	v[1], off = getFloat32(b, off)
	return v, off
}
