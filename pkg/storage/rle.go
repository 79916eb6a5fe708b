package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/leterax/voxelcore/pkg/coord"
)

// Run is one run of the RLE stream: count is stored offset-by-one, so a
// stored 0 means one run element and a stored 65535 means 65536 — every
// chunk's worth of runs fits in a uint16.
type Run[T Element] struct {
	Value T
	Count uint16
}

// Compress produces the RLE stream for a storage: runs of equal
// consecutive elements in packed-index order.
func Compress[T Element](s *ChunkStorage[T]) []Run[T] {
	if s.dense == nil {
		return []Run[T]{{Value: s.uniform, Count: coord.VoxelCount - 1}}
	}

	runs := make([]Run[T], 0, 16)
	cur := s.dense[0]
	count := uint16(0)
	for i := 1; i < len(s.dense); i++ {
		if s.dense[i] == cur && count < coord.VoxelCount-1 {
			count++
			continue
		}
		runs = append(runs, Run[T]{Value: cur, Count: count})
		cur = s.dense[i]
		count = 0
	}
	runs = append(runs, Run[T]{Value: cur, Count: count})
	return runs
}

// Decompress rebuilds a storage from an RLE stream, refusing streams
// whose cumulative run length differs from coord.VoxelCount.
func Decompress[T Element](runs []Run[T]) (*ChunkStorage[T], error) {
	if len(runs) == 1 && int(runs[0].Count)+1 == coord.VoxelCount {
		return NewUniform(runs[0].Value), nil
	}

	out := &ChunkStorage[T]{dense: make([]T, 0, coord.VoxelCount)}
	for _, r := range runs {
		n := int(r.Count) + 1
		for i := 0; i < n; i++ {
			out.dense = append(out.dense, r.Value)
		}
	}
	if len(out.dense) != coord.VoxelCount {
		return nil, fmt.Errorf("storage: RLE stream decodes to %d elements, want %d", len(out.dense), coord.VoxelCount)
	}
	return out, nil
}

// ValueCodec encodes and decodes a single element T to/from a fixed-width
// byte representation, so RLE streams of arbitrary element types can be
// serialized to a byte blob (used by the chunk cache, §11).
type ValueCodec[T Element] struct {
	Size   int
	Encode func(v T) []byte
	Decode func(b []byte) T
}

// EncodeRuns serializes an RLE stream to bytes using codec for the value
// portion of each run: [u16 count][value bytes] per run, run count as a
// leading u32.
func EncodeRuns[T Element](runs []Run[T], codec ValueCodec[T]) []byte {
	out := make([]byte, 4, 4+len(runs)*(2+codec.Size))
	binary.BigEndian.PutUint32(out, uint32(len(runs)))
	for _, r := range runs {
		var hdr [2]byte
		binary.BigEndian.PutUint16(hdr[:], r.Count)
		out = append(out, hdr[:]...)
		out = append(out, codec.Encode(r.Value)...)
	}
	return out
}

// DecodeRuns deserializes a byte blob produced by EncodeRuns.
func DecodeRuns[T Element](b []byte, codec ValueCodec[T]) ([]Run[T], error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("storage: RLE blob too short for header")
	}
	n := binary.BigEndian.Uint32(b)
	b = b[4:]
	runs := make([]Run[T], 0, n)
	for i := uint32(0); i < n; i++ {
		if len(b) < 2+codec.Size {
			return nil, fmt.Errorf("storage: RLE blob truncated at run %d", i)
		}
		count := binary.BigEndian.Uint16(b)
		b = b[2:]
		value := codec.Decode(b[:codec.Size])
		b = b[codec.Size:]
		runs = append(runs, Run[T]{Value: value, Count: count})
	}
	return runs, nil
}
