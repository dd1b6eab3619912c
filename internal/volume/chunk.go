package volume

import (
	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Region é um snapshot de um chunk: uma cópia dos voxels rebaseada em (0,0,0).
// É criada a cada passo de regeneração e pertence exclusivamente à tarefa
// que a recebe, por isso pode ser lida fora da thread de commit.
type Region struct {
	Chunk    util.Index  // coordenada em espaço de chunks
	Origin   util.Index  // primeiro voxel do chunk, em espaço de voxels
	Voxels   *voxel.Grid // tamanho nominal do chunk, preenchido com inativos nas bordas
	Offset   mgl32.Vec3  // posição do chunk no mundo
	Revision uint64      // revisão do chunk no momento da extração
}
