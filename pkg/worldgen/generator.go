// Package worldgen implements the deterministic, noise-driven fill of a
// freshly loaded chunk's kind storage.
package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/coord"
	"github.com/leterax/voxelcore/pkg/storage"
)

// SolidKind is the kind filled below the generated height. The source
// generator this is ported from always writes the same kind regardless
// of depth; per-depth layering is noted as future work, not built here.
const SolidKind catalog.Kind = 3

// Octaves and persistence of the FBM sampled per column. These match the
// defaults used by the corpus's own opensimplex-backed generator.
const (
	octaves     = 4
	persistence = 0.5
	frequency   = 0.01
)

// Generator produces deterministic terrain from a fixed 64-bit seed: the
// same seed and the same chunk coordinate always yield the same kinds.
type Generator struct {
	seed  int64
	noise opensimplex.Noise
}

// New creates a Generator for the given world seed.
func New(seed int64) *Generator {
	return &Generator{
		seed:  seed,
		noise: opensimplex.NewNormalized(seed),
	}
}

// Seed returns the generator's world seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// fbm samples a 2-D fractal-Brownian-motion value at (x, z), already
// normalized to [0,1] by the underlying opensimplex.NewNormalized noise
// source.
func (g *Generator) fbm(x, z float64) float64 {
	var sum, amplitude, max float64
	amplitude = 1
	freq := frequency
	for o := 0; o < octaves; o++ {
		sum += g.noise.Eval2(x*freq, z*freq) * amplitude
		max += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return sum / max
}

// Generate fills kinds for chunk from the 2-D FBM height field: for each
// column (x,z), height = clamp(128 + n*16, 0, 256), and every voxel below
// height is set to SolidKind.
func (g *Generator) Generate(chunk coord.Chunk, kinds *storage.ChunkStorage[catalog.Kind]) {
	for x := uint8(0); x < coord.SizeX; x++ {
		for z := uint8(0); z < coord.SizeZ; z++ {
			worldX := float64(int32(chunk.X)*coord.SizeX + int32(x))
			worldZ := float64(int32(chunk.Z)*coord.SizeZ + int32(z))

			n := g.fbm(worldX, worldZ)
			height := 128 + n*16
			if height < 0 {
				height = 0
			}
			if height > coord.SizeY {
				height = coord.SizeY
			}

			for y := 0; y < int(height); y++ {
				kinds.SetVoxel(coord.Voxel{X: x, Y: uint8(y), Z: z}, SolidKind)
			}
		}
	}
}
