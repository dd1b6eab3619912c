package volume

import (
	"testing"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRaycastHitsFirstActive(t *testing.T) {
	v, err := New(Options{
		Size:       util.NewIndex(8, 8, 8),
		ChunkSize:  util.NewIndex(4, 4, 4),
		VoxelScale: mgl32.Vec3{1, 1, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	solid := voxel.New([4]uint8{255, 0, 0, 255})
	v.Set(util.NewIndex(5, 2, 2), solid)
	v.Set(util.NewIndex(7, 2, 2), solid)

	from := mgl32.Vec3{0.5, 2.5, 2.5}
	hit, prev, ok := v.Raycast(from, mgl32.Vec3{1, 0, 0}, 10)
	if !ok {
		t.Fatal("raio não acertou")
	}
	if hit != util.NewIndex(5, 2, 2) || prev != util.NewIndex(4, 2, 2) {
		t.Errorf("hit=%v prev=%v, want (5,2,2) e (4,2,2)", hit, prev)
	}

	if _, _, ok := v.Raycast(from, mgl32.Vec3{1, 0, 0}, 3); ok {
		t.Error("acerto além de maxDist")
	}
	if _, _, ok := v.Raycast(from, mgl32.Vec3{-1, 0, 0}, 10); ok {
		t.Error("acerto na direção oposta")
	}
	if _, _, ok := v.Raycast(from, mgl32.Vec3{}, 10); ok {
		t.Error("direção nula acertou")
	}
}

func TestRaycastScaledVolume(t *testing.T) {
	v, err := New(Options{
		Size:       util.NewIndex(8, 8, 8),
		ChunkSize:  util.NewIndex(4, 4, 4),
		VoxelScale: mgl32.Vec3{0.5, 0.5, 0.5},
		Origin:     mgl32.Vec3{10, 0, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	v.Set(util.NewIndex(2, 6, 1), voxel.New([4]uint8{1, 2, 3, 255}))

	// Raio descendo do topo da coluna (2, *, 1).
	from := mgl32.Vec3{10 + 1.25, 3.9, 0.75}
	hit, prev, ok := v.Raycast(from, mgl32.Vec3{0, -1, 0}, 4)
	if !ok {
		t.Fatal("raio não acertou")
	}
	if hit != util.NewIndex(2, 6, 1) || prev != util.NewIndex(2, 7, 1) {
		t.Errorf("hit=%v prev=%v", hit, prev)
	}
}
