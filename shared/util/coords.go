package util

import (
	"fmt"
)

// Index é uma tripla inteira (x, y, z).
// É usada tanto como coordenada na grade quanto como extensão (tamanho);
// cada função documenta qual dos dois significados espera.
type Index struct {
	X, Y, Z int32
}

// NewIndex cria um novo Index.
func NewIndex(x, y, z int32) Index {
	return Index{X: x, Y: y, Z: z}
}

// Add soma dois índices.
func (i Index) Add(other Index) Index {
	return Index{
		X: i.X + other.X,
		Y: i.Y + other.Y,
		Z: i.Z + other.Z,
	}
}

// Sub subtrai dois índices.
func (i Index) Sub(other Index) Index {
	return Index{
		X: i.X - other.X,
		Y: i.Y - other.Y,
		Z: i.Z - other.Z,
	}
}

// Mul multiplica componente a componente (ex: coordenada de chunk * tamanho do chunk).
func (i Index) Mul(other Index) Index {
	return Index{
		X: i.X * other.X,
		Y: i.Y * other.Y,
		Z: i.Z * other.Z,
	}
}

// String retorna a representação em string do índice.
func (i Index) String() string {
	return fmt.Sprintf("(%d, %d, %d)", i.X, i.Y, i.Z)
}

// Volume interpreta o índice como extensão e retorna o número de células.
func (i Index) Volume() int {
	return int(i.X) * int(i.Y) * int(i.Z)
}

// Positive informa se todas as componentes de uma extensão são > 0.
func (i Index) Positive() bool {
	return i.X > 0 && i.Y > 0 && i.Z > 0
}

// Within informa se a coordenada i está dentro de [0, size) em todos os eixos.
func (i Index) Within(size Index) bool {
	return i.X >= 0 && i.Y >= 0 && i.Z >= 0 &&
		i.X < size.X && i.Y < size.Y && i.Z < size.Z
}

// FlatIndex calcula x + W*(y + H*z) para a coordenada pos numa grade de extensão size.
// Não faz verificação de limites.
func FlatIndex(size, pos Index) int {
	return int(pos.X) + int(size.X)*(int(pos.Y)+int(size.Y)*int(pos.Z))
}

// FromFlat é o inverso de FlatIndex.
func FromFlat(size Index, flat int) Index {
	w, h := int(size.X), int(size.Y)
	return Index{
		X: int32(flat % w),
		Y: int32((flat / w) % h),
		Z: int32(flat / (w * h)),
	}
}

// ChunkOf retorna a coordenada (espaço de chunks) do chunk que contém a coordenada
// de voxel pos. Usa divisão com arredondamento para baixo em coordenadas negativas.
func ChunkOf(pos, chunkSize Index) Index {
	return Index{
		X: floorDiv(pos.X, chunkSize.X),
		Y: floorDiv(pos.Y, chunkSize.Y),
		Z: floorDiv(pos.Z, chunkSize.Z),
	}
}

// CeilDiv divide componente a componente arredondando para cima (número de chunks por eixo).
func CeilDiv(size, chunkSize Index) Index {
	return Index{
		X: (size.X + chunkSize.X - 1) / chunkSize.X,
		Y: (size.Y + chunkSize.Y - 1) / chunkSize.Y,
		Z: (size.Z + chunkSize.Z - 1) / chunkSize.Z,
	}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Face identifica uma das 6 faces de um voxel.
type Face uint8

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Faces lista as faces na ordem fixa usada pelo mesher.
var Faces = [6]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

// FaceOffsets mapeia cada face para o deslocamento até o vizinho.
var FaceOffsets = [6]Index{
	FacePosX: {X: 1},
	FaceNegX: {X: -1},
	FacePosY: {Y: 1},
	FaceNegY: {Y: -1},
	FacePosZ: {Z: 1},
	FaceNegZ: {Z: -1},
}

// Neighbor retorna a coordenada vizinha através da face.
func (i Index) Neighbor(f Face) Index {
	return i.Add(FaceOffsets[f])
}

func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	case FaceNegZ:
		return "-Z"
	}
	return "?"
}
