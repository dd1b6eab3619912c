package volume

import (
	"math"

	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Raycast percorre as células atravessadas pelo raio (DDA) até maxDist em
// unidades de mundo. hit é o primeiro voxel ativo e prev a célula visitada
// logo antes dele, onde um voxel novo seria colocado.
func (v *Volume) Raycast(from, dir mgl32.Vec3, maxDist float32) (hit, prev util.Index, ok bool) {
	if dir.Len() == 0 {
		return hit, prev, false
	}
	dir = dir.Normalize()
	local := from.Sub(v.origin)
	inf := float32(math.Inf(1))

	var cell, step [3]int32
	var tMax, tDelta [3]float32
	for a := 0; a < 3; a++ {
		l := local[a] / v.scale[a]
		d := dir[a] / v.scale[a]
		cell[a] = int32(math.Floor(float64(l)))
		switch {
		case d > 0:
			step[a] = 1
			tDelta[a] = 1 / d
			tMax[a] = (float32(cell[a]+1) - l) / d
		case d < 0:
			step[a] = -1
			tDelta[a] = -1 / d
			tMax[a] = (l - float32(cell[a])) / -d
		default:
			tDelta[a] = inf
			tMax[a] = inf
		}
	}

	prev = util.NewIndex(cell[0], cell[1], cell[2])
	for t := float32(0); t <= maxDist; {
		i := util.NewIndex(cell[0], cell[1], cell[2])
		if vox, in := v.Get(i); in && vox.Active {
			return i, prev, true
		}
		prev = i

		a := 0
		if tMax[1] < tMax[a] {
			a = 1
		}
		if tMax[2] < tMax[a] {
			a = 2
		}
		t = tMax[a]
		cell[a] += step[a]
		tMax[a] += tDelta[a]
	}
	return hit, prev, false
}
