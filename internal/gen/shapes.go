package gen

import (
	"fmt"
	"math"

	"VoxelForge/internal/volume"
	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// Fill preenche o volume inteiro com vox.
func Fill(v *volume.Volume, vox voxel.Voxel) {
	v.Fill(vox)
}

// Stamp grava vox em todo voxel cujo centro fica dentro de s (distância <= 0).
// Coordenadas de s são de mundo. Devolve quantos voxels foram gravados.
func Stamp(v *volume.Volume, s sdf.SDF3, vox voxel.Voxel) int {
	bb := s.BoundingBox()
	lo := v.WorldToIndex(toVec3(bb.Min))
	hi := v.WorldToIndex(toVec3(bb.Max))
	size := v.Size()
	lo = util.NewIndex(util.Max(lo.X, 0), util.Max(lo.Y, 0), util.Max(lo.Z, 0))
	hi = util.NewIndex(util.Min(hi.X, size.X-1), util.Min(hi.Y, size.Y-1), util.Min(hi.Z, size.Z-1))

	half := v.VoxelScale().Mul(0.5)
	n := 0
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				i := util.NewIndex(x, y, z)
				c := v.IndexToWorld(i).Add(half)
				if s.Evaluate(toV3(c)) <= 0 && v.Set(i, vox) {
					n++
				}
			}
		}
	}
	return n
}

// Sphere grava uma esfera de raio radius centrada em center (mundo).
func Sphere(v *volume.Volume, center mgl32.Vec3, radius float32, vox voxel.Voxel) (int, error) {
	s, err := sdf.Sphere3D(float64(radius))
	if err != nil {
		return 0, fmt.Errorf("esfera de raio %v: %w", radius, err)
	}
	return Stamp(v, sdf.Transform3D(s, sdf.Translate3d(toV3(center))), vox), nil
}

// Box grava a caixa [min, max] (mundo).
func Box(v *volume.Volume, min, max mgl32.Vec3, vox voxel.Voxel) (int, error) {
	size := max.Sub(min)
	s, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		return 0, fmt.Errorf("caixa %v-%v: %w", min, max, err)
	}
	center := min.Add(size.Mul(0.5))
	return Stamp(v, sdf.Transform3D(s, sdf.Translate3d(toV3(center))), vox), nil
}

// Carve remove os voxels dentro de s.
func Carve(v *volume.Volume, s sdf.SDF3) int {
	return Stamp(v, s, voxel.Empty)
}

func toV3(p mgl32.Vec3) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func toVec3(p v3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// clampRadius limita o raio ao maior que cabe no volume.
func clampRadius(v *volume.Volume, r float32) float32 {
	lo, hi := v.Bounds()
	ext := hi.Sub(lo).Mul(0.5)
	m := float32(math.Min(float64(ext[0]), math.Min(float64(ext[1]), float64(ext[2]))))
	if r > m {
		return m
	}
	return r
}

// CenteredSphere grava a maior esfera pedida que cabe no centro do volume.
func CenteredSphere(v *volume.Volume, radius float32, vox voxel.Voxel) (int, error) {
	lo, hi := v.Bounds()
	return Sphere(v, lo.Add(hi).Mul(0.5), clampRadius(v, radius), vox)
}
