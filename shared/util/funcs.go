package util

import "github.com/go-gl/mathgl/mgl32"

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Scale multiplica dois vetores componente a componente.
// mgl32 só oferece multiplicação por escalar.
func Scale(v, s mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

// ToVec3 converte um Index para vetor float.
func ToVec3(i Index) mgl32.Vec3 {
	return mgl32.Vec3{float32(i.X), float32(i.Y), float32(i.Z)}
}

// Max retorna o maior de dois int32.
func Max(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Min retorna o menor de dois int32.
func Min(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
