// Package engine liga configuração, volume, pipeline e física num único
// objeto dirigido por ticks. Serve tanto ao visualizador quanto ao modo headless.
package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"VoxelForge/internal/gen"
	"VoxelForge/internal/meshing"
	"VoxelForge/internal/physics"
	"VoxelForge/internal/pipeline"
	"VoxelForge/internal/volume"
	"VoxelForge/shared/config"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrTimeout é devolvido quando Settle não converge a tempo.
var ErrTimeout = errors.New("pipeline não estabilizou")

// Engine é o núcleo de regeneração de um volume.
type Engine struct {
	Config   *config.Config
	Volume   *volume.Volume
	Pipeline *pipeline.Pipeline
	Physics  *physics.World
	Cache    *meshing.ResultStore

	budget time.Duration
}

// PipelineOptions traduz a seção pipeline da configuração.
func PipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	mesh, err := pipeline.ParseMeshStrategy(cfg.Pipeline.MeshStrategy)
	if err != nil {
		return pipeline.Options{}, err
	}
	collider, err := pipeline.ParseColliderStrategy(cfg.Pipeline.ColliderStrategy)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Mesh:              mesh,
		Collider:          collider,
		GenerateColliders: cfg.Pipeline.GenerateColliders,
		VoxelScale:        cfg.Volume.Scale(),
		Compile: meshing.CompileOptions{
			RegenerateNormals: cfg.Pipeline.RegenerateNormals,
			Material:          cfg.Pipeline.Material,
		},
		Workers:   cfg.Pipeline.Workers,
		QueueSize: cfg.Pipeline.QueueSize,
	}, nil
}

// New monta o volume, aplica o gerador e inicia o pipeline.
// mesh pode ser nil (sem renderização).
func New(cfg *config.Config, mesh pipeline.MeshSink) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := PipelineOptions(cfg)
	if err != nil {
		return nil, err
	}

	vol, err := volume.New(volume.Options{
		Size:       cfg.Volume.SizeIndex(),
		ChunkSize:  cfg.Volume.ChunkIndex(),
		VoxelScale: cfg.Volume.Scale(),
	})
	if err != nil {
		return nil, err
	}
	if err := Generate(vol, cfg.Generator); err != nil {
		return nil, err
	}

	e := &Engine{
		Config:  cfg,
		Volume:  vol,
		Physics: physics.NewWorld(cfg.Volume.Scale()),
		budget:  time.Duration(cfg.Pipeline.CommitBudgetMs) * time.Millisecond,
	}
	if cfg.Pipeline.ResultCache {
		e.Cache = meshing.NewResultStore()
		opts.Cache = e.Cache
	}
	e.Pipeline = pipeline.New(opts, mesh, e.Physics)

	log.Printf("[Engine] Volume %v em chunks de %v (%v chunks), gerador %q",
		vol.Size(), vol.ChunkSize(), vol.ChunkCount(), cfg.Generator.Kind)
	return e, nil
}

// Generate preenche o volume conforme a seção generator.
func Generate(v *volume.Volume, g config.Generator) error {
	switch g.Kind {
	case "", "empty":
	case "fill":
		gen.Fill(v, voxel.New(g.Color))
	case "noise":
		opts := gen.DefaultTerrain(g.Seed, v.Size().Y)
		opts.Caves = g.Caves
		n := gen.Terrain(v, opts)
		log.Printf("[Engine] Terreno gerado: %d voxels (seed %d)", n, g.Seed)
	case "sphere":
		if _, err := gen.CenteredSphere(v, g.Radius, voxel.New(g.Color)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("gerador desconhecido %q", g.Kind)
	}
	return nil
}

// Tick drena os chunks sujos, lança as regenerações e aplica os resultados
// prontos dentro do orçamento. Deve rodar na thread de commit.
func (e *Engine) Tick() (requested, committed int) {
	requested = e.Pipeline.Sync(e.Volume)
	committed = e.Pipeline.ProcessCommits(e.budget)
	return requested, committed
}

// Idle informa se não há trabalho pendente.
func (e *Engine) Idle() bool {
	st := e.Pipeline.Stats()
	return st.Running == 0 && st.PendingCommits == 0 && e.Volume.Dirty().Len() == 0
}

// Settle roda ticks até o pipeline ficar ocioso.
func (e *Engine) Settle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		e.Tick()
		if e.Idle() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w em %v (%+v)", ErrTimeout, timeout, e.Pipeline.Stats())
		}
		time.Sleep(time.Millisecond)
	}
}

// Dig remove o primeiro voxel ativo no raio. Devolve false se nada foi acertado.
func (e *Engine) Dig(from, dir mgl32.Vec3, maxDist float32) bool {
	hit, _, ok := e.Volume.Raycast(from, dir, maxDist)
	if !ok {
		return false
	}
	return e.Volume.Set(hit, voxel.Empty)
}

// Place coloca vox na célula anterior ao primeiro voxel acertado.
func (e *Engine) Place(from, dir mgl32.Vec3, maxDist float32, vox voxel.Voxel) bool {
	hit, prev, ok := e.Volume.Raycast(from, dir, maxDist)
	if !ok || hit == prev {
		return false
	}
	return e.Volume.Set(prev, vox)
}

// Close para o pipeline e libera a física.
func (e *Engine) Close() {
	e.Pipeline.Stop()
	e.Physics.Close()
}
