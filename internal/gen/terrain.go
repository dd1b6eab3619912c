// Package gen preenche volumes com conteúdo inicial. Toda escrita passa por
// Volume.Set, então os chunks tocados ficam sujos.
package gen

import (
	"VoxelForge/internal/volume"
	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/ojrac/opensimplex-go"
)

var (
	Grass = voxel.New([4]uint8{86, 152, 62, 255})
	Dirt  = voxel.New([4]uint8{121, 85, 58, 255})
	Stone = voxel.New([4]uint8{128, 128, 128, 255})
)

// TerrainOptions controla o ruído fractal do relevo.
type TerrainOptions struct {
	Seed        int64
	Scale       float32 // divisor de frequência, em voxels
	Octaves     int
	Lacunarity  float32
	Persistence float32
	Amplitude   float32 // variação de altura, em voxels
	BaseHeight  int32
	DirtDepth   int32
	Caves       bool
}

// DefaultTerrain devolve opções razoáveis para um volume de altura h.
func DefaultTerrain(seed int64, h int32) TerrainOptions {
	return TerrainOptions{
		Seed:        seed,
		Scale:       32,
		Octaves:     4,
		Lacunarity:  2,
		Persistence: 0.5,
		Amplitude:   float32(h) / 3,
		BaseHeight:  h / 2,
		DirtDepth:   3,
	}
}

// Terrain gera um relevo por mapa de altura. Devolve quantos voxels foram gravados.
func Terrain(v *volume.Volume, opts TerrainOptions) int {
	if opts.Scale <= 0 {
		opts.Scale = 32
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 1
	}
	noise := opensimplex.New32(opts.Seed)
	size := v.Size()
	n := 0

	for x := int32(0); x < size.X; x++ {
		for z := int32(0); z < size.Z; z++ {
			top := opts.BaseHeight + fractalNoise(noise, x, z, opts)
			if top >= size.Y {
				top = size.Y - 1
			}
			for y := int32(0); y <= top; y++ {
				if opts.Caves && y < top-opts.DirtDepth && cave(noise, x, y, z, opts.Scale) {
					continue
				}
				vox := Stone
				switch {
				case y == top:
					vox = Grass
				case y > top-opts.DirtDepth:
					vox = Dirt
				}
				if v.Set(util.NewIndex(x, y, z), vox) {
					n++
				}
			}
		}
	}
	return n
}

// Height devolve a altura da coluna (x, z) para as opções dadas.
func Height(opts TerrainOptions, x, z int32) int32 {
	if opts.Scale <= 0 {
		opts.Scale = 32
	}
	return opts.BaseHeight + fractalNoise(opensimplex.New32(opts.Seed), x, z, opts)
}

func fractalNoise(noise opensimplex.Noise32, x, z int32, opts TerrainOptions) int32 {
	val := float32(0)
	x1 := float32(x)
	z1 := float32(z)
	amplitude := opts.Amplitude

	for i := 0; i < opts.Octaves; i++ {
		val += noise.Eval2(x1/opts.Scale, z1/opts.Scale) * amplitude
		x1 *= opts.Lacunarity
		z1 *= opts.Lacunarity
		amplitude *= opts.Persistence
	}
	return int32(val)
}

func cave(noise opensimplex.Noise32, x, y, z int32, scale float32) bool {
	s := scale / 2
	return noise.Eval3(float32(x)/s, float32(y)/s, float32(z)/s) > 0.45
}
