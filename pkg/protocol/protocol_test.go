package protocol

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/mesh"
)

// S6: encode then decode a frame, expect a structurally equal message
// and the documented 6-byte header.
func TestFrameRoundTrip(t *testing.T) {
	msg := ChunkVertex{
		Chunk: coord.Chunk{X: -1, Z: 2},
		Vertex: []mesh.Vertex{
			{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{0, 0}, TileCoordStart: mgl32.Vec2{0, 0}, Light: mgl32.Vec3{1, 1, 1}},
			{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{1, 0}, TileCoordStart: mgl32.Vec2{0, 0}, Light: mgl32.Vec3{1, 1, 1}},
			{Position: mgl32.Vec3{1, 1, 0}, Normal: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{1, 1}, TileCoordStart: mgl32.Vec2{0, 0}, Light: mgl32.Vec3{1, 1, 1}},
		},
	}

	var buf bytes.Buffer
	if err := EncodeFrame(&buf, msg.Code(), msg.Encode()); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	header := buf.Bytes()[:6]
	wantHeader := []byte{0x00, 0x00, 0x00, 0x00, 0x00, byte(len(msg.Encode()))}
	if !bytes.Equal(header, wantHeader) {
		t.Fatalf("frame header = % x, want % x", header, wantHeader)
	}

	code, payload, err := DecodeFrame(&buf, 1<<20)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	decoded, err := DecodeChunkVertex(payload)
	if err != nil {
		t.Fatalf("DecodeChunkVertex: %v", err)
	}
	got := decoded.(ChunkVertex)
	if code != msg.Code() || got.Chunk != msg.Chunk || len(got.Vertex) != len(msg.Vertex) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
	for i := range got.Vertex {
		if got.Vertex[i] != msg.Vertex[i] {
			t.Fatalf("vertex %d mismatch: got %+v, want %+v", i, got.Vertex[i], msg.Vertex[i])
		}
	}
}

func TestDecodeFrameRejectsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0})
	if _, _, err := DecodeFrame(&buf, 1<<20); err != ErrZeroLengthFrame {
		t.Fatalf("err = %v, want ErrZeroLengthFrame", err)
	}
}

func TestDecodeFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 10})
	if _, _, err := DecodeFrame(&buf, 4); err != ErrFrameTooLarge {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestChunkLoadCodec(t *testing.T) {
	want := ChunkLoad{Chunk: coord.Chunk{X: 7, Z: -3}}
	got, err := DecodeChunkLoad(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != Message(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLandscapeUpdateCodec(t *testing.T) {
	want := LandscapeUpdate{Center: coord.Chunk{X: 1, Z: 1}, Radius: 5}
	got, err := DecodeLandscapeUpdate(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != Message(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDispatchInvokesRegisteredHandlers(t *testing.T) {
	table := NewClientTable()
	var got Message
	var gotClient uuid.UUID
	id := uuid.New()
	table.Handle(CodeChunkLoad, func(client uuid.UUID, msg Message) {
		got, gotClient = msg, client
	})

	want := ChunkLoad{Chunk: coord.Chunk{X: 3, Z: 4}}
	if err := table.Dispatch(id, CodeChunkLoad, want.Encode()); err != nil {
		t.Fatal(err)
	}
	if got != Message(want) || gotClient != id {
		t.Fatalf("handler saw (%+v, %v), want (%+v, %v)", got, gotClient, want, id)
	}
}

func TestDispatchRejectsUnknownCode(t *testing.T) {
	table := NewClientTable()
	if err := table.Dispatch(uuid.New(), 99, nil); err == nil {
		t.Fatal("expected an error for an unregistered code")
	}
}
