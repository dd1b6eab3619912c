// Comando headless roda o pipeline de regeneração sem GPU: gera o volume,
// aplica edições aleatórias em rajadas e imprime as estatísticas.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"VoxelForge/internal/engine"
	"VoxelForge/internal/gen"
	"VoxelForge/internal/meshing"
	"VoxelForge/shared/config"
	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// meshCounter é um sink de malha que só contabiliza o que seria enviado à GPU.
type meshCounter struct {
	chunks    map[util.Index]int
	applied   int
	triangles int
}

func (m *meshCounter) ApplyMesh(chunk util.Index, _ mgl32.Vec3, geo meshing.GeometryData) error {
	m.triangles += geo.TriangleCount() - m.chunks[chunk]
	m.chunks[chunk] = geo.TriangleCount()
	m.applied++
	return nil
}

func (m *meshCounter) ClearMesh(chunk util.Index) {
	m.triangles -= m.chunks[chunk]
	delete(m.chunks, chunk)
}

func main() {
	configPath := flag.String("config", "", "Arquivo de configuração YAML (vazio usa os padrões)")
	meshStrategy := flag.String("mesh", "", "Estratégia de malha: inline, offload-safe, offload-unsafe")
	colliderStrategy := flag.String("collider", "", "Estratégia de colisão: inline, offload")
	generator := flag.String("gen", "", "Gerador: empty, fill, noise, sphere")
	seed := flag.Int64("seed", 0, "Semente do gerador e das edições")
	bursts := flag.Int("bursts", 20, "Número de rajadas de edição")
	edits := flag.Int("edits", 8, "Edições por rajada (sem esperar commit entre elas)")
	timeout := flag.Duration("timeout", 30*time.Second, "Tempo máximo para estabilizar")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lshortfile)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("[Config] %v", err)
		}
	}
	if *meshStrategy != "" {
		cfg.Pipeline.MeshStrategy = *meshStrategy
	}
	if *colliderStrategy != "" {
		cfg.Pipeline.ColliderStrategy = *colliderStrategy
	}
	if *generator != "" {
		cfg.Generator.Kind = *generator
	}
	if *seed != 0 {
		cfg.Generator.Seed = *seed
	}

	sink := &meshCounter{chunks: make(map[util.Index]int)}
	e, err := engine.New(cfg, sink)
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}
	defer e.Close()

	start := time.Now()
	if err := e.Settle(*timeout); err != nil {
		log.Fatalf("[Engine] %v", err)
	}
	log.Printf("[Headless] Volume inicial pronto em %v", time.Since(start))

	rng := rand.New(rand.NewSource(cfg.Generator.Seed))
	size := e.Volume.Size()
	for b := 0; b < *bursts; b++ {
		// Várias edições no mesmo tick: o mesmo chunk é regenerado uma vez só,
		// e edições entre ticks superam regenerações ainda em andamento.
		for i := 0; i < *edits; i++ {
			center := e.Volume.IndexToWorld(util.NewIndex(
				rng.Int31n(size.X), rng.Int31n(size.Y), rng.Int31n(size.Z)))
			vox := voxel.Empty
			if rng.Intn(2) == 0 {
				vox = gen.Stone
			}
			if _, err := gen.Sphere(e.Volume, center, 1+rng.Float32()*3, vox); err != nil {
				log.Printf("[Headless] %v", err)
			}
		}
		e.Tick()
	}

	start = time.Now()
	if err := e.Settle(*timeout); err != nil {
		log.Fatalf("[Engine] %v", err)
	}
	st := e.Pipeline.Stats()

	fmt.Printf("estratégia de malha   %s\n", e.Pipeline.Options().Mesh)
	fmt.Printf("estratégia de colisão %s\n", e.Pipeline.Options().Collider)
	fmt.Printf("chunks                %v\n", e.Volume.ChunkCount())
	fmt.Printf("pedidas               %d\n", st.Requested)
	fmt.Printf("aplicadas             %d\n", st.Committed)
	fmt.Printf("canceladas            %d\n", st.Cancelled)
	fmt.Printf("falhas                %d\n", st.Failed)
	fmt.Printf("acertos de cache      %d\n", st.CacheHits)
	fmt.Printf("erros de teardown     %d\n", st.TeardownErrors)
	fmt.Printf("malhas aplicadas      %d\n", sink.applied)
	fmt.Printf("triângulos            %d\n", sink.triangles)
	fmt.Printf("colisores             %d\n", e.Physics.Len())
	fmt.Printf("estabilizou em        %v\n", time.Since(start))

	if st.Failed > 0 {
		e.Close()
		os.Exit(1)
	}
}
