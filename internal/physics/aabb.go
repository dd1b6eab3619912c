package physics

import "github.com/go-gl/mathgl/mgl32"

// AABB é uma caixa alinhada aos eixos em espaço de mundo.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// FromCenter monta a caixa a partir do centro e da meia-extensão.
func FromCenter(center, extents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(extents), Max: center.Add(extents)}
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Extents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Contains inclui as faces da caixa.
func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

func (a AABB) Intersects(b AABB) bool {
	return (a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X()) &&
		(a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y()) &&
		(a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z())
}
