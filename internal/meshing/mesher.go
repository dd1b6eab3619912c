package meshing

import (
	"sync"

	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxIndexedVertices é o maior número de vértices únicos endereçável por índices uint16.
const MaxIndexedVertices = 1 << 16

// GeometryData contém os buffers de vértices compilados para uma malha.
// Indices é nil quando a malha não é indexada.
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
	Indices  []uint16
	Material string
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{Material: g.Material}
	if len(g.Vertices) > 0 {
		clone.Vertices = make([]float32, len(g.Vertices))
		copy(clone.Vertices, g.Vertices)
	}
	if len(g.Normals) > 0 {
		clone.Normals = make([]float32, len(g.Normals))
		copy(clone.Normals, g.Normals)
	}
	if len(g.Colors) > 0 {
		clone.Colors = make([]uint8, len(g.Colors))
		copy(clone.Colors, g.Colors)
	}
	if len(g.Indices) > 0 {
		clone.Indices = make([]uint16, len(g.Indices))
		copy(clone.Indices, g.Indices)
	}
	return clone
}

// VertexCount retorna o número de vértices nos buffers.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// TriangleCount retorna o número de triângulos, indexados ou não.
func (g GeometryData) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// Empty informa se não há geometria.
func (g GeometryData) Empty() bool {
	return len(g.Vertices) == 0
}

// Result é a geometria compilada de um chunk numa determinada revisão.
type Result struct {
	Chunk    util.Index
	Revision uint64
	Geometry GeometryData
}

// Pool global para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure)
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{
			Geometry: GeometryData{
				Vertices: make([]float32, 0, 4096),
				Normals:  make([]float32, 0, 4096),
				Colors:   make([]uint8, 0, 4096),
				Indices:  make([]uint16, 0, 4096),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio para compilação.
func GetMeshBuffer() *MeshBuffer {
	b := meshBufferPool.Get().(*MeshBuffer)
	b.Reset()
	return b
}

// PutMeshBuffer zera os buffers e devolve a memória para o Pool.
// O chamador não pode mais usar b depois disso.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Reset()
	meshBufferPool.Put(b)
}

// MeshBuffer auxilia na construção de malhas dinâmicas.
type MeshBuffer struct {
	Geometry GeometryData
}

// Reset esvazia os buffers mantendo a capacidade.
func (b *MeshBuffer) Reset() {
	b.Geometry.Vertices = b.Geometry.Vertices[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.Colors = b.Geometry.Colors[:0]
	b.Geometry.Indices = b.Geometry.Indices[:0]
	b.Geometry.Material = ""
}

// AddFace adiciona uma face retangular (quad) ao buffer, sem índices.
func (b *MeshBuffer) AddFace(v1, v2, v3, v4 mgl32.Vec3, n mgl32.Vec3, c [4]uint8) {
	// Triângulo 1 (v1, v2, v3)
	b.addVertex(v1, n, c)
	b.addVertex(v2, n, c)
	b.addVertex(v3, n, c)

	// Triângulo 2 (v1, v3, v4)
	b.addVertex(v1, n, c)
	b.addVertex(v3, n, c)
	b.addVertex(v4, n, c)
}

func (b *MeshBuffer) addVertex(v mgl32.Vec3, n mgl32.Vec3, c [4]uint8) {
	b.Geometry.Vertices = append(b.Geometry.Vertices, v[0], v[1], v[2])
	b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
}

// CopyFrom substitui o conteúdo do buffer por uma cópia de g, reaproveitando a capacidade.
func (b *MeshBuffer) CopyFrom(g GeometryData) {
	b.Reset()
	b.Geometry.Vertices = append(b.Geometry.Vertices, g.Vertices...)
	b.Geometry.Normals = append(b.Geometry.Normals, g.Normals...)
	b.Geometry.Colors = append(b.Geometry.Colors, g.Colors...)
	b.Geometry.Indices = append(b.Geometry.Indices, g.Indices...)
	if g.Indices == nil {
		// Geometria sem índices: Indices vazio mas não-nil zeraria TriangleCount.
		b.Geometry.Indices = nil
	}
	b.Geometry.Material = g.Material
}
