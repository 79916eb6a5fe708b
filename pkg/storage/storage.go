// Package storage implements the compacted per-chunk array described by
// the world core: ChunkStorage starts out as a single uniform value and
// only materializes a dense 65536-element buffer once a write actually
// diverges from it.
package storage

import "github.com/leterax/voxelcore/pkg/coord"

// Element is the set of types ChunkStorage may hold. Tuple types used by
// Zip/Zip3 also satisfy it by virtue of being comparable.
type Element interface {
	comparable
}

// ChunkStorage is a compacted array of coord.VoxelCount elements of T. It
// starts Uniform (O(1) memory, representing an all-default chunk) and
// upgrades to Dense the first time a write differs from the current
// uniform value. Dense never downgrades back to Uniform.
type ChunkStorage[T Element] struct {
	uniform T
	dense   []T // nil while Uniform
}

// New returns a Uniform storage holding the zero value of T.
func New[T Element]() *ChunkStorage[T] {
	return &ChunkStorage[T]{}
}

// NewUniform returns a Uniform storage holding v.
func NewUniform[T Element](v T) *ChunkStorage[T] {
	return &ChunkStorage[T]{uniform: v}
}

// IsDense reports whether the storage has been materialized.
func (s *ChunkStorage[T]) IsDense() bool {
	return s.dense != nil
}

// Get returns the element at the packed index.
func (s *ChunkStorage[T]) Get(idx uint32) T {
	if s.dense != nil {
		return s.dense[idx]
	}
	return s.uniform
}

// GetVoxel is a convenience wrapper around Get(coord.Index(v)).
func (s *ChunkStorage[T]) GetVoxel(v coord.Voxel) T {
	return s.Get(coord.Index(v))
}

// Set writes v at the packed index, upgrading the storage to Dense if v
// differs from the current uniform value.
func (s *ChunkStorage[T]) Set(idx uint32, v T) {
	if s.dense == nil {
		if v == s.uniform {
			return
		}
		s.materialize()
	}
	s.dense[idx] = v
}

// SetVoxel is a convenience wrapper around Set(coord.Index(v), val).
func (s *ChunkStorage[T]) SetVoxel(v coord.Voxel, val T) {
	s.Set(coord.Index(v), val)
}

// Fill overwrites every element with v. If v equals the current uniform
// value and the storage isn't already dense, this is a no-op allocation.
func (s *ChunkStorage[T]) Fill(v T) {
	if s.dense == nil {
		s.uniform = v
		return
	}
	for i := range s.dense {
		s.dense[i] = v
	}
}

func (s *ChunkStorage[T]) materialize() {
	s.dense = make([]T, coord.VoxelCount)
	for i := range s.dense {
		s.dense[i] = s.uniform
	}
}

// Iter calls fn for every index in the chunk, cheap on Uniform storage
// (fn is still called 65536 times — Iter is for callers that must visit
// every voxel regardless of representation; All is the short-circuiting
// cousin for predicates).
func (s *ChunkStorage[T]) Iter(fn func(idx uint32, v T)) {
	if s.dense == nil {
		for i := uint32(0); i < coord.VoxelCount; i++ {
			fn(i, s.uniform)
		}
		return
	}
	for i, v := range s.dense {
		fn(uint32(i), v)
	}
}

// IterTopSlab calls fn for every voxel in the y=255 slab.
func (s *ChunkStorage[T]) IterTopSlab(fn func(v coord.Voxel, val T)) {
	const topY = coord.SizeY - 1
	for x := uint8(0); x < coord.SizeX; x++ {
		for z := uint8(0); z < coord.SizeZ; z++ {
			v := coord.Voxel{X: x, Y: topY, Z: z}
			fn(v, s.GetVoxel(v))
		}
	}
}

// All reports whether predicate holds for every element. On a Uniform
// storage this is a single call.
func (s *ChunkStorage[T]) All(predicate func(v T) bool) bool {
	if s.dense == nil {
		return predicate(s.uniform)
	}
	for _, v := range s.dense {
		if !predicate(v) {
			return false
		}
	}
	return true
}

// Pair is the element type produced by Zip.
type Pair[A, B Element] struct {
	A A
	B B
}

// Triple is the element type produced by Zip3.
type Triple[A, B, C Element] struct {
	A A
	B B
	C C
}

// Zip combines two storages element-wise into a new Dense storage of
// pairs, preserving index alignment.
func Zip[A, B Element](a *ChunkStorage[A], b *ChunkStorage[B]) *ChunkStorage[Pair[A, B]] {
	out := &ChunkStorage[Pair[A, B]]{dense: make([]Pair[A, B], coord.VoxelCount)}
	for i := uint32(0); i < coord.VoxelCount; i++ {
		out.dense[i] = Pair[A, B]{A: a.Get(i), B: b.Get(i)}
	}
	return out
}

// Zip3 combines three storages element-wise into a new Dense storage of
// triples, preserving index alignment.
func Zip3[A, B, C Element](a *ChunkStorage[A], b *ChunkStorage[B], c *ChunkStorage[C]) *ChunkStorage[Triple[A, B, C]] {
	out := &ChunkStorage[Triple[A, B, C]]{dense: make([]Triple[A, B, C], coord.VoxelCount)}
	for i := uint32(0); i < coord.VoxelCount; i++ {
		out.dense[i] = Triple[A, B, C]{A: a.Get(i), B: b.Get(i), C: c.Get(i)}
	}
	return out
}
