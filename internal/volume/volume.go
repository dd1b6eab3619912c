// Package volume agrupa a grade de voxels em chunks e rastreia quais precisam
// ser regenerados.
package volume

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidChunkSize indica dimensões de chunk não positivas.
var ErrInvalidChunkSize = errors.New("dimensões de chunk inválidas")

// ErrInvalidScale indica uma escala de voxel com componente <= 0.
var ErrInvalidScale = errors.New("escala de voxel inválida")

// Options descreve a geometria de um volume.
type Options struct {
	Size       util.Index // extensão do volume em voxels
	ChunkSize  util.Index // extensão de um chunk em voxels
	VoxelScale mgl32.Vec3
	Origin     mgl32.Vec3 // posição do voxel (0,0,0) no mundo
}

// Volume é dono da grade de voxels. Escritas marcam o chunk correspondente
// como sujo; a regeneração trabalha sobre snapshots extraídos por Region.
type Volume struct {
	mu        sync.RWMutex
	source    voxel.Source
	revisions map[util.Index]uint64

	chunkSize  util.Index
	chunkCount util.Index
	scale      mgl32.Vec3
	origin     mgl32.Vec3

	dirty *DirtyTracker
}

// New cria um volume sobre uma grade densa nova.
func New(opts Options) (*Volume, error) {
	grid, err := voxel.NewGrid(opts.Size)
	if err != nil {
		return nil, err
	}
	return NewWithSource(grid, opts)
}

// NewWithSource cria um volume sobre um armazenamento existente.
// opts.Size é ignorado; vale src.Size().
func NewWithSource(src voxel.Source, opts Options) (*Volume, error) {
	if !opts.ChunkSize.Positive() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChunkSize, opts.ChunkSize)
	}
	if opts.VoxelScale[0] <= 0 || opts.VoxelScale[1] <= 0 || opts.VoxelScale[2] <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, opts.VoxelScale)
	}
	size := src.Size()
	if !size.Positive() {
		return nil, fmt.Errorf("%w: %v", voxel.ErrInvalidSize, size)
	}
	return &Volume{
		source:     src,
		revisions:  make(map[util.Index]uint64),
		chunkSize:  opts.ChunkSize,
		chunkCount: util.CeilDiv(size, opts.ChunkSize),
		scale:      opts.VoxelScale,
		origin:     opts.Origin,
		dirty:      NewDirtyTracker(),
	}, nil
}

// Size retorna a extensão do volume em voxels.
func (v *Volume) Size() util.Index { return v.source.Size() }

// ChunkSize retorna a extensão nominal de um chunk.
func (v *Volume) ChunkSize() util.Index { return v.chunkSize }

// ChunkCount retorna o número de chunks por eixo (extensão).
func (v *Volume) ChunkCount() util.Index { return v.chunkCount }

// VoxelScale retorna a escala de um voxel no mundo.
func (v *Volume) VoxelScale() mgl32.Vec3 { return v.scale }

// Dirty expõe o tracker de chunks sujos.
func (v *Volume) Dirty() *DirtyTracker { return v.dirty }

// DrainDirty drena o conjunto de chunks sujos.
func (v *Volume) DrainDirty() []util.Index { return v.dirty.DrainAll() }

// Contains verifica se a coordenada de voxel está no volume.
func (v *Volume) Contains(i util.Index) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.source.Contains(i)
}

// Get lê um voxel; ok=false fora dos limites.
func (v *Volume) Get(i util.Index) (voxel.Voxel, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.source.Get(i)
}

// Set grava um voxel e marca o chunk dono como sujo. Retorna false fora dos limites.
func (v *Volume) Set(i util.Index, vox voxel.Voxel) bool {
	v.mu.Lock()
	if !v.source.Set(i, vox) {
		v.mu.Unlock()
		return false
	}
	chunk := util.ChunkOf(i, v.chunkSize)
	v.revisions[chunk]++
	v.mu.Unlock()

	v.dirty.Mark(chunk)
	return true
}

// Fill grava vox em todas as células e marca todos os chunks como sujos.
func (v *Volume) Fill(vox voxel.Voxel) {
	size := v.Size()
	v.mu.Lock()
	for z := int32(0); z < size.Z; z++ {
		for y := int32(0); y < size.Y; y++ {
			for x := int32(0); x < size.X; x++ {
				v.source.Set(util.NewIndex(x, y, z), vox)
			}
		}
	}
	v.mu.Unlock()
	v.MarkAll()
}

// MarkAll marca todos os chunks como sujos e avança suas revisões.
func (v *Volume) MarkAll() {
	v.EachChunk(func(c util.Index) {
		v.mu.Lock()
		v.revisions[c]++
		v.mu.Unlock()
		v.dirty.Mark(c)
	})
}

// EachChunk visita todas as coordenadas de chunk do volume em ordem x, y, z.
func (v *Volume) EachChunk(fn func(chunk util.Index)) {
	n := v.chunkCount
	for x := int32(0); x < n.X; x++ {
		for y := int32(0); y < n.Y; y++ {
			for z := int32(0); z < n.Z; z++ {
				fn(util.NewIndex(x, y, z))
			}
		}
	}
}

// ChunkOf retorna o chunk que contém a coordenada de voxel i.
func (v *Volume) ChunkOf(i util.Index) util.Index {
	return util.ChunkOf(i, v.chunkSize)
}

// ContainsChunk verifica se a coordenada de chunk existe no volume.
func (v *Volume) ContainsChunk(chunk util.Index) bool {
	return chunk.Within(v.chunkCount)
}

// Revision retorna a revisão atual do chunk.
func (v *Volume) Revision(chunk util.Index) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.revisions[chunk]
}

// Region extrai o snapshot do chunk. ok=false se o chunk não existe.
func (v *Volume) Region(chunk util.Index) (Region, bool) {
	if !v.ContainsChunk(chunk) {
		return Region{}, false
	}
	start := chunk.Mul(v.chunkSize)
	end := start.Add(v.chunkSize).Sub(util.NewIndex(1, 1, 1))

	v.mu.RLock()
	grid, err := voxel.ExtractFrom(v.source, start, end)
	rev := v.revisions[chunk]
	v.mu.RUnlock()
	if err != nil {
		// chunkSize já foi validado na construção
		panic(err)
	}

	return Region{
		Chunk:    chunk,
		Origin:   start,
		Voxels:   grid,
		Offset:   v.ChunkWorldOffset(chunk),
		Revision: rev,
	}, true
}

// ChunkWorldOffset retorna a posição do canto do chunk no mundo.
func (v *Volume) ChunkWorldOffset(chunk util.Index) mgl32.Vec3 {
	return v.IndexToWorld(chunk.Mul(v.chunkSize))
}

// IndexToWorld converte coordenada de voxel para o canto do voxel no mundo.
func (v *Volume) IndexToWorld(i util.Index) mgl32.Vec3 {
	return v.origin.Add(util.Scale(util.ToVec3(i), v.scale))
}

// WorldToIndex converte posição no mundo para a coordenada do voxel que a contém.
func (v *Volume) WorldToIndex(p mgl32.Vec3) util.Index {
	local := p.Sub(v.origin)
	return util.NewIndex(
		int32(math.Floor(float64(local[0]/v.scale[0]))),
		int32(math.Floor(float64(local[1]/v.scale[1]))),
		int32(math.Floor(float64(local[2]/v.scale[2]))),
	)
}

// VoxelAtWorld lê o voxel na posição de mundo p.
func (v *Volume) VoxelAtWorld(p mgl32.Vec3) (voxel.Voxel, bool) {
	return v.Get(v.WorldToIndex(p))
}

// SetAtWorld grava o voxel na posição de mundo p.
func (v *Volume) SetAtWorld(p mgl32.Vec3, vox voxel.Voxel) bool {
	return v.Set(v.WorldToIndex(p), vox)
}

// Bounds retorna os cantos mínimo e máximo do volume no mundo.
func (v *Volume) Bounds() (min, max mgl32.Vec3) {
	return v.origin, v.IndexToWorld(v.Size())
}
