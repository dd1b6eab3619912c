package engine

import (
	"testing"
	"time"

	"VoxelForge/internal/gen"
	"VoxelForge/internal/meshing"
	"VoxelForge/shared/config"
	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

type countingSink struct {
	meshes map[util.Index]int
}

func (s *countingSink) ApplyMesh(chunk util.Index, _ mgl32.Vec3, geo meshing.GeometryData) error {
	s.meshes[chunk] = geo.TriangleCount()
	return nil
}

func (s *countingSink) ClearMesh(chunk util.Index) { delete(s.meshes, chunk) }

func smallConfig(strategy string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Volume.Size = [3]int32{16, 8, 16}
	cfg.Volume.ChunkSize = [3]int32{8, 8, 8}
	cfg.Pipeline.MeshStrategy = strategy
	cfg.Pipeline.Workers = 2
	cfg.Generator.Kind = "fill"
	return cfg
}

func TestSettleBuildsEveryChunk(t *testing.T) {
	for _, strategy := range []string{"inline", "offload-safe", "offload-unsafe"} {
		t.Run(strategy, func(t *testing.T) {
			sink := &countingSink{meshes: make(map[util.Index]int)}
			e, err := New(smallConfig(strategy), sink)
			if err != nil {
				t.Fatal(err)
			}
			defer e.Close()

			if err := e.Settle(5 * time.Second); err != nil {
				t.Fatal(err)
			}
			// Cada chunk 8x8x8 cheio vira um cubo sem faces internas.
			if len(sink.meshes) != 4 {
				t.Fatalf("chunks com malha = %d, want 4", len(sink.meshes))
			}
			for c, tris := range sink.meshes {
				if tris != 6*64*2 {
					t.Errorf("chunk %v: %d triângulos, want %d", c, tris, 6*64*2)
				}
			}
			// Um corpo por chunk cheio.
			if e.Physics.Len() != 4 {
				t.Errorf("corpos = %d, want 4", e.Physics.Len())
			}
			if st := e.Pipeline.Stats(); st.Committed != 4 || st.Failed != 0 {
				t.Errorf("stats = %+v", st)
			}
		})
	}
}

func TestDigRegeneratesOnlyTouchedChunk(t *testing.T) {
	sink := &countingSink{meshes: make(map[util.Index]int)}
	e, err := New(smallConfig("offload-safe"), sink)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if err := e.Settle(5 * time.Second); err != nil {
		t.Fatal(err)
	}

	// Cava de cima para baixo no chunk (0,0,0).
	if !e.Dig(mgl32.Vec3{2.5, 20, 2.5}, mgl32.Vec3{0, -1, 0}, 30) {
		t.Fatal("Dig não acertou")
	}
	if got := e.Volume.Dirty().Len(); got != 1 {
		t.Fatalf("chunks sujos = %d, want 1", got)
	}
	if err := e.Settle(5 * time.Second); err != nil {
		t.Fatal(err)
	}

	// O buraco de um voxel no topo acrescenta 4 paredes e troca o teto pelo fundo.
	if got := sink.meshes[util.NewIndex(0, 0, 0)]; got != (6*64+4)*2 {
		t.Errorf("triângulos do chunk cavado = %d, want %d", got, (6*64+4)*2)
	}
	if st := e.Pipeline.Stats(); st.Committed != 5 {
		t.Errorf("Committed = %d, want 5", st.Committed)
	}

	if !e.Place(mgl32.Vec3{2.5, 20, 2.5}, mgl32.Vec3{0, -1, 0}, 30, gen.Stone) {
		t.Fatal("Place falhou")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig("inline")
	cfg.Volume.ChunkSize = [3]int32{0, 8, 8}
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("configuração inválida aceita")
	}
}

func TestGenerateKinds(t *testing.T) {
	for _, kind := range []string{"empty", "noise", "sphere"} {
		cfg := smallConfig("inline")
		cfg.Generator.Kind = kind
		cfg.Generator.Radius = 4
		e, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if err := e.Settle(5 * time.Second); err != nil {
			t.Errorf("%s: %v", kind, err)
		}
		e.Close()
	}
}
