package voxel

import (
	"errors"
	"fmt"

	"VoxelForge/shared/util"
)

// ErrInvalidSize indica dimensões de grade não positivas.
var ErrInvalidSize = errors.New("dimensões de grade inválidas")

// Grid é um array 3D denso de voxels com endereçamento plano
// i = x + W*(y + H*z). As dimensões são fixas na construção.
// Grid não é thread-safe; quem a possui decide como sincronizar.
type Grid struct {
	size  util.Index
	cells []Voxel
}

var _ Source = (*Grid)(nil)

// NewGrid cria uma grade vazia com extensão size.
func NewGrid(size util.Index) (*Grid, error) {
	if !size.Positive() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return &Grid{
		size:  size,
		cells: make([]Voxel, size.Volume()),
	}, nil
}

// MustNewGrid é como NewGrid mas entra em pânico com dimensões inválidas.
func MustNewGrid(size util.Index) *Grid {
	g, err := NewGrid(size)
	if err != nil {
		panic(err)
	}
	return g
}

// Size retorna a extensão (W, H, D) da grade.
func (g *Grid) Size() util.Index {
	return g.size
}

// Len retorna o número total de células.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Contains verifica se a coordenada está dentro da grade.
// Coordenadas fora do intervalo nunca são "dobradas" para dentro.
func (g *Grid) Contains(i util.Index) bool {
	return i.Within(g.size)
}

// Get retorna o voxel na coordenada i; ok=false quando fora dos limites.
func (g *Grid) Get(i util.Index) (Voxel, bool) {
	if !g.Contains(i) {
		return Empty, false
	}
	return g.cells[util.FlatIndex(g.size, i)], true
}

// Active é um atalho para Get(i).Active, tratando fora dos limites como inativo.
func (g *Grid) Active(i util.Index) bool {
	if !g.Contains(i) {
		return false
	}
	return g.cells[util.FlatIndex(g.size, i)].Active
}

// Set substitui o voxel em i. Retorna false quando fora dos limites.
func (g *Grid) Set(i util.Index, v Voxel) bool {
	if !g.Contains(i) {
		return false
	}
	g.cells[util.FlatIndex(g.size, i)] = v
	return true
}

// Fill substitui todas as células pelo voxel v.
func (g *Grid) Fill(v Voxel) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Clone cria uma cópia independente da grade.
func (g *Grid) Clone() *Grid {
	c := &Grid{size: g.size, cells: make([]Voxel, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// CountActive retorna o número de voxels ativos.
func (g *Grid) CountActive() int {
	n := 0
	for _, v := range g.cells {
		if v.Active {
			n++
		}
	}
	return n
}

// Extract copia a sub-região [start, end] (ambos inclusivos, coordenadas de voxel)
// para uma nova grade rebaseada em (0,0,0). Células de origem fora da grade são
// lidas como voxel inativo, de modo que chunks de borda menores que o nominal
// não quebram.
func (g *Grid) Extract(start, end util.Index) (*Grid, error) {
	return ExtractFrom(g, start, end)
}

// ExtractFrom é como Grid.Extract, mas aceita qualquer Source.
func ExtractFrom(src Source, start, end util.Index) (*Grid, error) {
	size := end.Sub(start).Add(util.NewIndex(1, 1, 1))
	out, err := NewGrid(size)
	if err != nil {
		return nil, fmt.Errorf("extract %v..%v: %w", start, end, err)
	}

	for z := int32(0); z < size.Z; z++ {
		for y := int32(0); y < size.Y; y++ {
			for x := int32(0); x < size.X; x++ {
				v, ok := src.Get(util.NewIndex(start.X+x, start.Y+y, start.Z+z))
				if !ok {
					continue
				}
				out.cells[util.FlatIndex(size, util.NewIndex(x, y, z))] = v
			}
		}
	}
	return out, nil
}
