// Package collision gera caixas de colisão alinhadas aos eixos a partir da grade.
package collision

import (
	"context"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Box é uma caixa em unidades de voxel: Start é coordenada, Size é extensão.
type Box struct {
	Start util.Index
	Size  util.Index
}

// End retorna a coordenada exclusiva do canto oposto.
func (b Box) End() util.Index {
	return b.Start.Add(b.Size)
}

// Contains informa se a célula i pertence à caixa.
func (b Box) Contains(i util.Index) bool {
	return i.Sub(b.Start).Within(b.Size)
}

// World converte a caixa para espaço de mundo: meia-extensão = size*scale/2 e
// centro = start*scale + meia-extensão.
func (b Box) World(scale mgl32.Vec3) (center, extents mgl32.Vec3) {
	extents = util.Scale(util.ToVec3(b.Size), scale).Mul(0.5)
	center = util.Scale(util.ToVec3(b.Start), scale).Add(extents)
	return center, extents
}

type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

// Merge particiona os voxels ativos em caixas por extensão gulosa.
// A varredura é x externo, y, z interno; cada caixa tenta crescer +1 em X, depois Y,
// depois Z, em rodadas, até uma rodada inteira falhar. Células visitadas nunca
// viram origem nem alvo de crescimento de outra caixa, então as caixas não se sobrepõem.
func Merge(g *voxel.Grid) []Box {
	boxes, _ := MergeContext(context.Background(), g)
	return boxes
}

// MergeContext é como Merge, mas observa ctx a cada fatia X.
func MergeContext(ctx context.Context, g *voxel.Grid) ([]Box, error) {
	m := merger{grid: g, size: g.Size(), visited: make([]bool, g.Len())}
	var boxes []Box

	for x := int32(0); x < m.size.X; x++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for y := int32(0); y < m.size.Y; y++ {
			for z := int32(0); z < m.size.Z; z++ {
				start := util.NewIndex(x, y, z)
				if m.isVisited(start) {
					continue
				}
				m.visit(start)
				if !g.Active(start) {
					continue
				}
				boxes = append(boxes, m.grow(start))
			}
		}
	}
	return boxes, nil
}

type merger struct {
	grid    *voxel.Grid
	size    util.Index
	visited []bool
}

func (m *merger) isVisited(i util.Index) bool {
	return m.visited[util.FlatIndex(m.size, i)]
}

func (m *merger) visit(i util.Index) {
	m.visited[util.FlatIndex(m.size, i)] = true
}

func (m *merger) grow(start util.Index) Box {
	box := Box{Start: start, Size: util.NewIndex(1, 1, 1)}
	for {
		grew := false
		for _, a := range [3]axis{axisX, axisY, axisZ} {
			if m.trySpread(&box, a) {
				grew = true
			}
		}
		if !grew {
			return box
		}
	}
}

// trySpread testa a seção transversal inteira deslocada +1 no eixo a.
// Só marca como visitada quando toda a seção é válida.
func (m *merger) trySpread(box *Box, a axis) bool {
	layer := m.layer(*box, a)
	ok := true
	layer(func(i util.Index) bool {
		if !i.Within(m.size) || m.isVisited(i) || !m.grid.Active(i) {
			ok = false
			return false
		}
		return true
	})
	if !ok {
		return false
	}

	layer(func(i util.Index) bool {
		m.visit(i)
		return true
	})
	switch a {
	case axisX:
		box.Size.X++
	case axisY:
		box.Size.Y++
	case axisZ:
		box.Size.Z++
	}
	return true
}

// layer retorna um iterador sobre as células da face +a da caixa, já deslocadas.
// O iterador para quando fn retorna false.
func (m *merger) layer(box Box, a axis) func(fn func(util.Index) bool) {
	end := box.End()
	return func(fn func(util.Index) bool) {
		switch a {
		case axisX:
			for y := box.Start.Y; y < end.Y; y++ {
				for z := box.Start.Z; z < end.Z; z++ {
					if !fn(util.NewIndex(end.X, y, z)) {
						return
					}
				}
			}
		case axisY:
			for x := box.Start.X; x < end.X; x++ {
				for z := box.Start.Z; z < end.Z; z++ {
					if !fn(util.NewIndex(x, end.Y, z)) {
						return
					}
				}
			}
		case axisZ:
			for x := box.Start.X; x < end.X; x++ {
				for y := box.Start.Y; y < end.Y; y++ {
					if !fn(util.NewIndex(x, y, end.Z)) {
						return
					}
				}
			}
		}
	}
}
