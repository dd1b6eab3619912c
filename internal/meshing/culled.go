package meshing

import (
	"context"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Quad é uma face exposta: 2 triângulos (6 vértices) com normal dura e cor do voxel.
// Os triângulos são (v1, v2, v3) e (v1, v3, v4), anti-horário visto de fora.
type Quad struct {
	Color    [4]uint8
	Normal   mgl32.Vec3
	Vertices [6]mgl32.Vec3
}

// MeshResult é a lista ordenada de faces produzida pelo mesher.
// É transitória: vive até ser compilada.
type MeshResult struct {
	Faces []Quad
}

// Len retorna o número de quads.
func (m MeshResult) Len() int {
	return len(m.Faces)
}

// Cantos do cubo unitário.
var cubeCorners = [8]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// Cantos v1..v4 de cada face, indexados por util.Face.
var faceCorners = [6][4]int{
	util.FacePosX: {1, 2, 6, 5},
	util.FaceNegX: {0, 4, 7, 3},
	util.FacePosY: {3, 7, 6, 2},
	util.FaceNegY: {0, 1, 5, 4},
	util.FacePosZ: {4, 5, 6, 7},
	util.FaceNegZ: {0, 3, 2, 1},
}

var faceNormals = [6]mgl32.Vec3{
	util.FacePosX: {1, 0, 0},
	util.FaceNegX: {-1, 0, 0},
	util.FacePosY: {0, 1, 0},
	util.FaceNegY: {0, -1, 0},
	util.FacePosZ: {0, 0, 1},
	util.FaceNegZ: {0, 0, -1},
}

// FaceNormal retorna a normal externa da face.
func FaceNormal(f util.Face) mgl32.Vec3 {
	return faceNormals[f]
}

// Generate gera as faces expostas da grade (culled meshing).
// Uma face é emitida quando o vizinho está fora da grade ou inativo.
// As posições são (canto + coordenada) * scale, com escala independente por eixo.
// A ordem de saída é x externo, y, z interno e, por voxel, +X -X +Y -Y +Z -Z.
func Generate(g *voxel.Grid, scale mgl32.Vec3) MeshResult {
	res, _ := GenerateContext(context.Background(), g, scale)
	return res
}

// GenerateContext é como Generate, mas observa ctx a cada fatia X
// e retorna ctx.Err() se cancelado no meio.
func GenerateContext(ctx context.Context, g *voxel.Grid, scale mgl32.Vec3) (MeshResult, error) {
	var res MeshResult
	size := g.Size()

	for x := int32(0); x < size.X; x++ {
		if err := ctx.Err(); err != nil {
			return MeshResult{}, err
		}
		for y := int32(0); y < size.Y; y++ {
			for z := int32(0); z < size.Z; z++ {
				pos := util.NewIndex(x, y, z)
				v, _ := g.Get(pos)
				if !v.Active {
					continue
				}
				offset := util.ToVec3(pos)
				for _, f := range util.Faces {
					if g.Active(pos.Neighbor(f)) {
						continue
					}
					res.Faces = append(res.Faces, buildQuad(f, offset, scale, v.Color))
				}
			}
		}
	}
	return res, nil
}

func buildQuad(f util.Face, offset, scale mgl32.Vec3, c [4]uint8) Quad {
	corners := faceCorners[f]
	var p [4]mgl32.Vec3
	for i, ci := range corners {
		p[i] = util.Scale(cubeCorners[ci].Add(offset), scale)
	}
	return Quad{
		Color:    c,
		Normal:   faceNormals[f],
		Vertices: [6]mgl32.Vec3{p[0], p[1], p[2], p[0], p[2], p[3]},
	}
}
