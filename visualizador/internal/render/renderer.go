package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	"VoxelForge/internal/meshing"
	"VoxelForge/internal/physics"
	"VoxelForge/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoWindow é devolvido quando não há contexto OpenGL para o upload.
var ErrNoWindow = errors.New("janela raylib não inicializada")

// ChunkModel é a geometria de um chunk já enviada para a GPU.
type ChunkModel struct {
	Chunk     util.Index
	Model     rl.Model
	Position  rl.Vector3
	Tint      rl.Color
	Triangles int
}

// Renderer implementa o sink de malha do pipeline sobre a raylib.
// Todos os métodos rodam na thread principal (onde o contexto OpenGL é válido).
type Renderer struct {
	mu     sync.RWMutex
	Models map[util.Index]*ChunkModel

	// Tints mapeia a tag de material para a cor de modulação do modelo.
	Tints map[string]rl.Color

	uploads int
}

// NewRenderer cria um novo renderizador.
func NewRenderer() *Renderer {
	return &Renderer{
		Models: make(map[util.Index]*ChunkModel),
		Tints:  make(map[string]rl.Color),
	}
}

// ApplyMesh substitui o modelo do chunk pela geometria dada. Os slices de geo
// são copiados para memória C e não são retidos.
func (r *Renderer) ApplyMesh(chunk util.Index, offset mgl32.Vec3, geo meshing.GeometryData) error {
	if !rl.IsWindowReady() {
		return ErrNoWindow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unloadLocked(chunk)
	if geo.Empty() {
		return nil
	}

	mesh := r.geometryToMesh(geo)
	rl.UploadMesh(&mesh, false)

	tint, ok := r.Tints[geo.Material]
	if !ok {
		tint = rl.White
	}
	r.Models[chunk] = &ChunkModel{
		Chunk:     chunk,
		Model:     rl.LoadModelFromMesh(mesh),
		Position:  rl.Vector3{X: offset.X(), Y: offset.Y(), Z: offset.Z()},
		Tint:      tint,
		Triangles: geo.TriangleCount(),
	}
	r.uploads++
	return nil
}

// ClearMesh remove o modelo do chunk, se houver.
func (r *Renderer) ClearMesh(chunk util.Index) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloadLocked(chunk)
}

func (r *Renderer) unloadLocked(chunk util.Index) {
	if old, ok := r.Models[chunk]; ok {
		rl.UnloadModel(old.Model)
		delete(r.Models, chunk)
	}
}

func (r *Renderer) geometryToMesh(data meshing.GeometryData) rl.Mesh {
	mesh := rl.Mesh{}
	mesh.VertexCount = int32(data.VertexCount())
	mesh.TriangleCount = int32(data.TriangleCount())

	// A raylib libera esses buffers com free() no UnloadModel, por isso
	// precisam vir de C.malloc e não da memória do Go.
	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(r.copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.Indices) > 0 {
		mesh.Indices = (*uint16)(r.copyToC(unsafe.Pointer(&data.Indices[0]), len(data.Indices)*2))
	}
	return mesh
}

// copyToC aloca memória C e copia os dados.
func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// Draw renderiza todos os chunks carregados. Chamar entre BeginMode3D/EndMode3D.
func (r *Renderer) Draw(wireframe bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cm := range r.Models {
		if wireframe {
			rl.DrawModelWires(cm.Model, cm.Position, 1.0, cm.Tint)
			continue
		}
		rl.DrawModel(cm.Model, cm.Position, 1.0, cm.Tint)
	}
}

// DrawColliders desenha as caixas de colisão em arame.
func (r *Renderer) DrawColliders(world *physics.World) {
	color := rl.NewColor(255, 80, 80, 200)
	world.Each(func(b physics.Body) bool {
		c := b.Bounds.Center()
		s := b.Bounds.Max.Sub(b.Bounds.Min)
		rl.DrawCubeWiresV(
			rl.Vector3{X: c.X(), Y: c.Y(), Z: c.Z()},
			rl.Vector3{X: s.X(), Y: s.Y(), Z: s.Z()},
			color,
		)
		return true
	})
}

// DrawSelection destaca o voxel de canto min com a escala dada.
func (r *Renderer) DrawSelection(min, scale mgl32.Vec3) {
	c := min.Add(scale.Mul(0.5))
	rl.DrawCubeWiresV(
		rl.Vector3{X: c.X(), Y: c.Y(), Z: c.Z()},
		rl.Vector3{X: scale.X() * 1.02, Y: scale.Y() * 1.02, Z: scale.Z() * 1.02},
		rl.Yellow,
	)
}

// Stats devolve número de modelos, triângulos na GPU e uploads feitos.
func (r *Renderer) Stats() (models, triangles, uploads int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cm := range r.Models {
		triangles += cm.Triangles
	}
	return len(r.Models), triangles, r.uploads
}

// Unload libera todos os recursos de GPU.
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cm := range r.Models {
		rl.UnloadModel(cm.Model)
	}
	r.Models = make(map[util.Index]*ChunkModel)
}
