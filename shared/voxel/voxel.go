// Package voxel contém o armazenamento denso de voxels.
package voxel

import "VoxelForge/shared/util"

// Voxel é uma célula da grade. É um valor imutável: escrever na grade
// substitui o voxel inteiro.
type Voxel struct {
	Active bool
	Color  [4]uint8 // RGBA
}

// Empty é o voxel padrão (inativo) usado para células fora da grade.
var Empty = Voxel{}

// New cria um voxel ativo com a cor informada.
func New(c [4]uint8) Voxel {
	return Voxel{Active: true, Color: c}
}

// Source é o contrato de um armazenamento de voxels plugável.
// Acessos fora dos limites falham silenciosamente (false / "não encontrado").
type Source interface {
	Get(i util.Index) (Voxel, bool)
	Set(i util.Index, v Voxel) bool
	Contains(i util.Index) bool
	Size() util.Index
}
