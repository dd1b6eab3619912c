package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CompileOptions controla o passo de compilação da malha.
type CompileOptions struct {
	// RegenerateNormals substitui as normais duras por normais suavizadas
	// (média das normais das faces que compartilham a posição).
	RegenerateNormals bool
	Material          string
}

type vertexKey struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
	color  [4]uint8
}

// Compile achata um MeshResult num GeometryData recém-alocado.
func Compile(mr MeshResult, opts CompileOptions) GeometryData {
	buf := &MeshBuffer{}
	CompileInto(buf, mr, opts)
	return buf.Geometry
}

// CompileInto achata um MeshResult dentro de buf, descartando o conteúdo anterior.
// Vértices iguais (posição, normal, cor) são deduplicados e indexados; se o número
// de vértices únicos não couber em uint16 a saída não é indexada.
func CompileInto(buf *MeshBuffer, mr MeshResult, opts CompileOptions) {
	buf.Reset()
	buf.Geometry.Material = opts.Material
	if len(mr.Faces) == 0 {
		return
	}

	var smooth map[mgl32.Vec3]mgl32.Vec3
	if opts.RegenerateNormals {
		smooth = smoothNormals(mr)
	}
	normalOf := func(q *Quad, v mgl32.Vec3) mgl32.Vec3 {
		if smooth == nil {
			return q.Normal
		}
		return smooth[v]
	}

	lookup := make(map[vertexKey]int, len(mr.Faces)*4)
	unique := make([]vertexKey, 0, len(mr.Faces)*4)
	refs := make([]int, 0, len(mr.Faces)*6)
	for fi := range mr.Faces {
		q := &mr.Faces[fi]
		for _, v := range q.Vertices {
			k := vertexKey{pos: v, normal: normalOf(q, v), color: q.Color}
			idx, ok := lookup[k]
			if !ok {
				idx = len(unique)
				lookup[k] = idx
				unique = append(unique, k)
			}
			refs = append(refs, idx)
		}
	}

	if len(unique) > MaxIndexedVertices {
		// Sem índices: um vértice por referência.
		for _, r := range refs {
			k := unique[r]
			buf.addVertex(k.pos, k.normal, k.color)
		}
		buf.Geometry.Indices = nil
		return
	}

	for _, k := range unique {
		buf.addVertex(k.pos, k.normal, k.color)
	}
	for _, r := range refs {
		buf.Geometry.Indices = append(buf.Geometry.Indices, uint16(r))
	}
}

// smoothNormals soma a normal de cada face uma vez por canto distinto do quad.
func smoothNormals(mr MeshResult) map[mgl32.Vec3]mgl32.Vec3 {
	sums := make(map[mgl32.Vec3]mgl32.Vec3, len(mr.Faces)*2)
	for fi := range mr.Faces {
		q := &mr.Faces[fi]
		for i, v := range q.Vertices {
			if seenInQuad(q, i) {
				continue
			}
			sums[v] = sums[v].Add(q.Normal)
		}
	}
	for p, n := range sums {
		if l := n.Len(); l > 0 {
			sums[p] = n.Mul(1 / l)
		}
	}
	return sums
}

func seenInQuad(q *Quad, i int) bool {
	for j := 0; j < i; j++ {
		if q.Vertices[j] == q.Vertices[i] {
			return true
		}
	}
	return false
}
