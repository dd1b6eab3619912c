package pipeline

import (
	"VoxelForge/internal/collision"
	"VoxelForge/internal/meshing"
	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshSink recebe a geometria compilada de um chunk. Só é chamado da thread de commit.
// A implementação não pode reter os slices de geo depois que ApplyMesh retorna.
type MeshSink interface {
	ApplyMesh(chunk util.Index, offset mgl32.Vec3, geo meshing.GeometryData) error
	ClearMesh(chunk util.Index)
}

// ColliderSink recebe as caixas de colisão (espaço de voxels) de um chunk.
// A cada regeneração aplicada o pipeline chama DestroyColliders e depois
// BuildColliders, nunca atualizações parciais.
type ColliderSink interface {
	DestroyColliders(chunk util.Index) error
	BuildColliders(chunk util.Index, offset mgl32.Vec3, boxes []collision.Box) error
}

type nopSink struct{}

func (nopSink) ApplyMesh(util.Index, mgl32.Vec3, meshing.GeometryData) error { return nil }
func (nopSink) ClearMesh(util.Index)                                       {}
func (nopSink) DestroyColliders(util.Index) error                          { return nil }
func (nopSink) BuildColliders(util.Index, mgl32.Vec3, []collision.Box) error {
	return nil
}
