package collision

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

var white = [4]uint8{255, 255, 255, 255}

func gridWith(size util.Index, active ...util.Index) *voxel.Grid {
	g := voxel.MustNewGrid(size)
	for _, i := range active {
		g.Set(i, voxel.New(white))
	}
	return g
}

// checkPartition verifica que as caixas cobrem exatamente as células ativas, sem sobreposição.
func checkPartition(t *testing.T, g *voxel.Grid, boxes []Box) {
	t.Helper()
	owner := make(map[util.Index]int)
	for bi, b := range boxes {
		if !b.Size.Positive() {
			t.Fatalf("caixa %d com tamanho inválido %v", bi, b.Size)
		}
		end := b.End()
		for x := b.Start.X; x < end.X; x++ {
			for y := b.Start.Y; y < end.Y; y++ {
				for z := b.Start.Z; z < end.Z; z++ {
					i := util.NewIndex(x, y, z)
					if !g.Active(i) {
						t.Fatalf("caixa %d %+v cobre célula inativa %v", bi, b, i)
					}
					if prev, dup := owner[i]; dup {
						t.Fatalf("célula %v nas caixas %d e %d", i, prev, bi)
					}
					owner[i] = bi
				}
			}
		}
	}
	if len(owner) != g.CountActive() {
		t.Fatalf("caixas cobrem %d células, grade tem %d ativas", len(owner), g.CountActive())
	}
}

func TestMergeScenarios(t *testing.T) {
	tests := []struct {
		name string
		grid *voxel.Grid
		want []Box
	}{
		{
			name: "vazio",
			grid: gridWith(util.NewIndex(4, 4, 4)),
			want: nil,
		},
		{
			name: "dois vizinhos em X",
			grid: gridWith(util.NewIndex(2, 1, 1), util.NewIndex(0, 0, 0), util.NewIndex(1, 0, 0)),
			want: []Box{{Start: util.NewIndex(0, 0, 0), Size: util.NewIndex(2, 1, 1)}},
		},
		{
			// Cruz no plano XY:
			//   y=2  . # .
			//   y=1  # # #
			//   y=0  . # .
			name: "cruz",
			grid: gridWith(util.NewIndex(3, 3, 1),
				util.NewIndex(1, 0, 0),
				util.NewIndex(0, 1, 0), util.NewIndex(1, 1, 0), util.NewIndex(2, 1, 0),
				util.NewIndex(1, 2, 0)),
			want: []Box{
				{Start: util.NewIndex(0, 1, 0), Size: util.NewIndex(3, 1, 1)},
				{Start: util.NewIndex(1, 0, 0), Size: util.NewIndex(1, 1, 1)},
				{Start: util.NewIndex(1, 2, 0), Size: util.NewIndex(1, 1, 1)},
			},
		},
		{
			name: "bloco sólido",
			grid: func() *voxel.Grid {
				g := voxel.MustNewGrid(util.NewIndex(4, 3, 2))
				g.Fill(voxel.New(white))
				return g
			}(),
			want: []Box{{Start: util.NewIndex(0, 0, 0), Size: util.NewIndex(4, 3, 2)}},
		},
		{
			// L no plano XY: a prioridade X estica a base antes de subir.
			//   y=1  # .
			//   y=0  # #
			name: "L",
			grid: gridWith(util.NewIndex(2, 2, 1),
				util.NewIndex(0, 0, 0), util.NewIndex(1, 0, 0), util.NewIndex(0, 1, 0)),
			want: []Box{
				{Start: util.NewIndex(0, 0, 0), Size: util.NewIndex(2, 1, 1)},
				{Start: util.NewIndex(0, 1, 0), Size: util.NewIndex(1, 1, 1)},
			},
		},
	}
	for _, tt := range tests {
		got := Merge(tt.grid)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Merge = %+v, want %+v", tt.name, got, tt.want)
		}
		checkPartition(t, tt.grid, got)
	}
}

func TestMergePartitionRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		size := util.NewIndex(int32(1+r.Intn(6)), int32(1+r.Intn(6)), int32(1+r.Intn(6)))
		g := voxel.MustNewGrid(size)
		for i := 0; i < g.Len(); i++ {
			if r.Intn(3) > 0 {
				g.Set(util.FromFlat(size, i), voxel.New(white))
			}
		}
		boxes := Merge(g)
		checkPartition(t, g, boxes)
		if again := Merge(g); !reflect.DeepEqual(boxes, again) {
			t.Fatalf("round %d: Merge não é determinístico", round)
		}
	}
}

func TestMergeContextCancelled(t *testing.T) {
	g := voxel.MustNewGrid(util.NewIndex(4, 4, 4))
	g.Fill(voxel.New(white))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := MergeContext(ctx, g); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBoxWorld(t *testing.T) {
	b := Box{Start: util.NewIndex(1, 0, 2), Size: util.NewIndex(2, 1, 1)}
	center, extents := b.World(mgl32.Vec3{0.5, 2, 1})
	if want := (mgl32.Vec3{0.5, 1, 0.5}); extents != want {
		t.Errorf("extents = %v, want %v", extents, want)
	}
	if want := (mgl32.Vec3{1, 1, 2.5}); center != want {
		t.Errorf("center = %v, want %v", center, want)
	}
}

func BenchmarkMergeFullChunk(b *testing.B) {
	g := voxel.MustNewGrid(util.NewIndex(16, 16, 16))
	for i := 0; i < g.Len(); i++ {
		if i%5 != 0 {
			g.Set(util.FromFlat(g.Size(), i), voxel.New(white))
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Merge(g)
	}
}
