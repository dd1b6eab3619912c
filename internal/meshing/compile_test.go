package meshing

import (
	"testing"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCompileSingleVoxelIndexed(t *testing.T) {
	res := Generate(gridWith(util.NewIndex(1, 1, 1), util.NewIndex(0, 0, 0)), unit)
	geo := Compile(res, CompileOptions{Material: "pedra"})

	// 6 faces * 4 cantos únicos (normais duras não são compartilhadas entre faces)
	if geo.VertexCount() != 24 {
		t.Errorf("VertexCount = %d, want 24", geo.VertexCount())
	}
	if len(geo.Indices) != 36 {
		t.Errorf("len(Indices) = %d, want 36", len(geo.Indices))
	}
	if geo.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", geo.TriangleCount())
	}
	if len(geo.Normals) != len(geo.Vertices) || len(geo.Colors) != geo.VertexCount()*4 {
		t.Errorf("buffers com tamanhos inconsistentes: v=%d n=%d c=%d",
			len(geo.Vertices), len(geo.Normals), len(geo.Colors))
	}
	if geo.Material != "pedra" {
		t.Errorf("Material = %q, want %q", geo.Material, "pedra")
	}
	for _, idx := range geo.Indices {
		if int(idx) >= geo.VertexCount() {
			t.Fatalf("índice %d fora do buffer de %d vértices", idx, geo.VertexCount())
		}
	}
}

func TestCompileRegeneratedNormals(t *testing.T) {
	res := Generate(gridWith(util.NewIndex(1, 1, 1), util.NewIndex(0, 0, 0)), unit)
	geo := Compile(res, CompileOptions{RegenerateNormals: true})

	// Com normais suavizadas cada canto do cubo vira um único vértice.
	if geo.VertexCount() != 8 {
		t.Fatalf("VertexCount = %d, want 8", geo.VertexCount())
	}
	for i := 0; i < geo.VertexCount(); i++ {
		p := mgl32.Vec3{geo.Vertices[i*3], geo.Vertices[i*3+1], geo.Vertices[i*3+2]}
		n := mgl32.Vec3{geo.Normals[i*3], geo.Normals[i*3+1], geo.Normals[i*3+2]}
		want := p.Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Normalize()
		if !n.ApproxEqualThreshold(want, 1e-5) {
			t.Errorf("normal em %v = %v, want %v", p, n, want)
		}
	}
}

func TestCompileEmpty(t *testing.T) {
	geo := Compile(MeshResult{}, CompileOptions{})
	if !geo.Empty() || geo.TriangleCount() != 0 {
		t.Fatalf("compilação vazia produziu geometria: %+v", geo)
	}
}

func TestCompileIntoReusesBuffer(t *testing.T) {
	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	two := Generate(gridWith(util.NewIndex(3, 1, 1), util.NewIndex(0, 0, 0), util.NewIndex(2, 0, 0)), unit)
	CompileInto(buf, two, CompileOptions{})
	first := buf.Geometry.TriangleCount()

	one := Generate(gridWith(util.NewIndex(1, 1, 1), util.NewIndex(0, 0, 0)), unit)
	CompileInto(buf, one, CompileOptions{})
	if got := buf.Geometry.TriangleCount(); got != 12 || first != 24 {
		t.Fatalf("TriangleCount = %d depois de %d, want 12 depois de 24", got, first)
	}
}

func TestResultStoreRevision(t *testing.T) {
	s := NewResultStore()
	chunk := util.NewIndex(1, 0, 0)
	geo := Compile(Generate(gridWith(util.NewIndex(1, 1, 1), util.NewIndex(0, 0, 0)), unit), CompileOptions{})
	s.Store(Result{Chunk: chunk, Revision: 3, Geometry: geo})

	if _, ok := s.Get(chunk, 2); ok {
		t.Errorf("revisão antiga não deveria bater no cache")
	}
	got, ok := s.Get(chunk, 3)
	if !ok || got.Geometry.VertexCount() != geo.VertexCount() {
		t.Fatalf("Get(%v, 3) = %v, %v", chunk, got.Geometry.VertexCount(), ok)
	}
	got.Geometry.Vertices[0] = 99
	again, _ := s.Get(chunk, 3)
	if again.Geometry.Vertices[0] == 99 {
		t.Fatalf("cache deveria devolver clones")
	}
	s.Delete(chunk)
	if s.Len() != 0 {
		t.Fatalf("Len = %d depois de Delete", s.Len())
	}
}

// checkerboard ativa metade das células, sem vizinhos por face.
func checkerboard(n int32) *voxel.Grid {
	g := voxel.MustNewGrid(util.NewIndex(n, n, n))
	for z := int32(0); z < n; z++ {
		for y := int32(0); y < n; y++ {
			for x := int32(0); x < n; x++ {
				if (x+y+z)%2 == 0 {
					g.Set(util.NewIndex(x, y, z), voxel.New(white))
				}
			}
		}
	}
	return g
}

func TestCompileFallsBackToNonIndexed(t *testing.T) {
	// 24³ xadrez: 6912 voxels, cerca de 90 mil vértices únicos, acima de MaxIndexedVertices.
	geo := Compile(Generate(checkerboard(24), unit), CompileOptions{})
	if geo.Indices != nil {
		t.Fatalf("Indices deveria ser nil acima de %d vértices, len=%d", MaxIndexedVertices, len(geo.Indices))
	}
	if want := 6912 * 12; geo.TriangleCount() != want {
		t.Fatalf("TriangleCount = %d, want %d", geo.TriangleCount(), want)
	}
	if geo.VertexCount() != geo.TriangleCount()*3 {
		t.Fatalf("VertexCount = %d, want %d", geo.VertexCount(), geo.TriangleCount()*3)
	}

	cl := geo.Clone()
	if cl.Indices != nil || cl.TriangleCount() != geo.TriangleCount() {
		t.Fatalf("Clone: indices nil=%v tris=%d", cl.Indices == nil, cl.TriangleCount())
	}
}

func TestCopyFromNonIndexedAfterIndexed(t *testing.T) {
	buf := &MeshBuffer{}
	indexed := Compile(Generate(gridWith(util.NewIndex(1, 1, 1), util.NewIndex(0, 0, 0)), unit), CompileOptions{})
	buf.CopyFrom(indexed)
	if buf.Geometry.TriangleCount() != 12 {
		t.Fatalf("TriangleCount = %d, want 12", buf.Geometry.TriangleCount())
	}

	flat := GeometryData{
		Vertices: make([]float32, 6*3),
		Normals:  make([]float32, 6*3),
		Colors:   make([]uint8, 6*4),
	}
	buf.CopyFrom(flat)
	if buf.Geometry.Indices != nil {
		t.Fatalf("Indices deveria ser nil, len=%d cap=%d", len(buf.Geometry.Indices), cap(buf.Geometry.Indices))
	}
	if got := buf.Geometry.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount = %d, want 2", got)
	}
}
