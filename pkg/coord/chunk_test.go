package coord

import "testing"

func TestIndexRoundTrip(t *testing.T) {
	for x := uint8(0); x < SizeX; x++ {
		for z := uint8(0); z < SizeZ; z++ {
			for y := 0; y < SizeY; y += 17 {
				v := Voxel{X: x, Y: uint8(y), Z: z}
				idx := Index(v)
				if idx >= VoxelCount {
					t.Fatalf("index %d out of range for %v", idx, v)
				}
				got := FromIndex(idx)
				if got != v {
					t.Fatalf("round trip mismatch: %v -> %d -> %v", v, idx, got)
				}
			}
		}
	}
}

func TestChunkOfAndInChunkOf(t *testing.T) {
	tests := []struct {
		pos   WorldPos
		chunk Chunk
		in    Voxel
	}{
		{WorldPos{0, 0, 0}, Chunk{0, 0}, Voxel{0, 0, 0}},
		{WorldPos{15, 5, 15}, Chunk{0, 0}, Voxel{15, 5, 15}},
		{WorldPos{16, 5, 16}, Chunk{1, 1}, Voxel{0, 5, 0}},
		{WorldPos{-1, 5, -1}, Chunk{-1, -1}, Voxel{15, 5, 15}},
		{WorldPos{-16, 5, -16}, Chunk{-1, -1}, Voxel{0, 5, 0}},
		{WorldPos{-17, 5, -17}, Chunk{-2, -2}, Voxel{15, 5, 15}},
	}
	for _, tt := range tests {
		if got := ChunkOf(tt.pos); got != tt.chunk {
			t.Errorf("ChunkOf(%v) = %v, want %v", tt.pos, got, tt.chunk)
		}
		if got := InChunkOf(tt.pos); got != tt.in {
			t.Errorf("InChunkOf(%v) = %v, want %v", tt.pos, got, tt.in)
		}
	}
}

func TestAtEdgeAndWrap(t *testing.T) {
	v := Voxel{X: 15, Y: 10, Z: 0}
	if !AtEdge(v, Right) {
		t.Error("expected edge on Right")
	}
	if !AtEdge(v, Back) {
		t.Error("expected edge on Back")
	}
	if AtEdge(v, Front) {
		t.Error("did not expect edge on Front")
	}

	dir, wrapped := WrapEdge(v, Right)
	if dir != Right || wrapped.X != 0 || wrapped.Y != 10 || wrapped.Z != 0 {
		t.Errorf("WrapEdge(Right) = %v, %v", dir, wrapped)
	}
}

func TestNeighborAndOpposite(t *testing.T) {
	c := Chunk{X: 2, Z: -3}
	if got := c.Neighbor(Right); got != (Chunk{3, -3}) {
		t.Errorf("Neighbor(Right) = %v", got)
	}
	if got := c.Neighbor(Back); got != (Chunk{2, -4}) {
		t.Errorf("Neighbor(Back) = %v", got)
	}
	for _, d := range []Direction{Right, Left, Up, Down, Front, Back} {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite is not involutive for %v", d)
		}
	}
}
