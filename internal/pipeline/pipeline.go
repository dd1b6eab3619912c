package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"VoxelForge/internal/collision"
	"VoxelForge/internal/meshing"
	"VoxelForge/internal/volume"
	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoVoxels é devolvido quando a região pedida não tem voxels.
var ErrNoVoxels = errors.New("região sem voxels")

// Options configura o pipeline de regeneração.
type Options struct {
	Mesh              MeshStrategy
	Collider          ColliderStrategy
	GenerateColliders bool
	VoxelScale        mgl32.Vec3
	Compile           meshing.CompileOptions
	Workers           int                  // <= 0 usa runtime.NumCPU()
	QueueSize         int                  // capacidade da fila de tarefas
	Cache             *meshing.ResultStore // opcional
}

// Stats são contadores acumulados desde a criação do pipeline.
type Stats struct {
	Requested      int64
	Committed      int64
	Cancelled      int64
	Failed         int64
	CacheHits      int64
	TeardownErrors int64
	SinkErrors     int64
	Running        int
	PendingCommits int
}

// Outcome é o resultado produzido por um worker.
type Outcome struct {
	Status   Status
	Geometry meshing.GeometryData
	Boxes    []collision.Box
	Err      error
}

type slot struct {
	token  *Token
	state  State
	buffer *meshing.MeshBuffer // buffer de longa duração (offload-unsafe), só tocado no commit
}

type job struct {
	region         volume.Region
	token          *Token
	meshAsync      bool
	collidersAsync bool
	buffer         *meshing.MeshBuffer
	outcome        Outcome
}

// Pipeline agenda regenerações de chunks, cancela as que foram superadas e
// aplica os resultados numa única thread de commit.
//
// Request, ProcessCommits, Cancel e Destroy devem ser chamados sempre da
// mesma goroutine (a thread de commit). Só os workers rodam em paralelo.
type Pipeline struct {
	opts      Options
	mesh      MeshSink
	colliders ColliderSink

	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan *job
	commits *util.ThreadSafeQueue[*job]
	wg      sync.WaitGroup
	stop    sync.Once

	mu     sync.Mutex
	slots  map[util.Index]*slot
	nextID uint64

	requested      atomic.Int64
	committed      atomic.Int64
	cancelled      atomic.Int64
	failed         atomic.Int64
	cacheHits      atomic.Int64
	teardownErrors atomic.Int64
	sinkErrors     atomic.Int64

	// beforeRun é chamado pelo worker antes de computar uma tarefa (testes)
	beforeRun func(chunk util.Index, id uint64)
}

// New cria o pipeline e inicia os workers. Sinks nulos são ignorados.
func New(opts Options, mesh MeshSink, colliders ColliderSink) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.VoxelScale == (mgl32.Vec3{}) {
		opts.VoxelScale = mgl32.Vec3{1, 1, 1}
	}
	if mesh == nil {
		mesh = nopSink{}
	}
	if colliders == nil {
		colliders = nopSink{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		opts:      opts,
		mesh:      mesh,
		colliders: colliders,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(chan *job, opts.QueueSize),
		commits:   util.NewThreadSafeQueue[*job](),
		slots:     make(map[util.Index]*slot),
	}

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	log.Printf("[Pipeline] Iniciado com %d workers (malha=%s, colisão=%s, colisores=%v)",
		opts.Workers, opts.Mesh, opts.Collider, opts.GenerateColliders)
	return p
}

// Options devolve a configuração efetiva.
func (p *Pipeline) Options() Options { return p.opts }

// Request lança a regeneração de um chunk a partir do snapshot r e devolve o
// ID do token. Qualquer regeneração anterior do mesmo chunk é cancelada e seu
// resultado nunca será aplicado.
func (p *Pipeline) Request(r volume.Region) uint64 {
	if p.ctx.Err() != nil {
		return 0
	}
	p.requested.Add(1)

	var cached meshing.Result
	hit := false
	if p.opts.Cache != nil {
		cached, hit = p.opts.Cache.Get(r.Chunk, r.Revision)
		if hit {
			p.cacheHits.Add(1)
		}
	}

	j := &job{
		region:         r,
		meshAsync:      p.opts.Mesh != MeshInline && !hit,
		collidersAsync: p.opts.GenerateColliders && p.opts.Collider == ColliderOffload,
	}

	p.mu.Lock()
	s := p.slotLocked(r.Chunk)
	if s.token != nil {
		s.token.Cancel()
	}
	p.nextID++
	j.token = newToken(p.ctx, p.nextID)
	s.token = j.token
	s.state = StateRunning
	p.mu.Unlock()

	// Parte síncrona
	if !j.meshAsync {
		geo := cached.Geometry
		if !hit {
			var err error
			if geo, err = p.buildMesh(j.token.Context(), r, nil); err != nil {
				p.fail(j, err)
				return j.token.ID()
			}
		}
		p.applyMesh(r, geo, !hit)
	}

	if !p.opts.GenerateColliders {
		p.destroyColliders(r.Chunk)
	} else if !j.collidersAsync {
		if r.Voxels == nil {
			p.fail(j, ErrNoVoxels)
			return j.token.ID()
		}
		boxes, err := collision.MergeContext(j.token.Context(), r.Voxels)
		if err != nil {
			p.fail(j, err)
			return j.token.ID()
		}
		p.replaceColliders(r, boxes)
	}

	if !j.meshAsync && !j.collidersAsync {
		p.settle(j, StateCommitted)
		p.committed.Add(1)
		return j.token.ID()
	}

	select {
	case p.jobs <- j:
	case <-p.ctx.Done():
		p.release(j)
	}
	return j.token.ID()
}

// ProcessCommits aplica os resultados prontos. Com budget > 0 para assim que
// o tempo estourar, mas sempre aplica ao menos um. Devolve quantos processou.
func (p *Pipeline) ProcessCommits(budget time.Duration) int {
	start := time.Now()
	n := 0
	for {
		if budget > 0 && n > 0 && time.Since(start) >= budget {
			break
		}
		j, ok := p.commits.Pop()
		if !ok {
			break
		}
		p.commit(j)
		n++
	}
	return n
}

// Cancel cancela a regeneração em andamento do chunk, se houver.
func (p *Pipeline) Cancel(chunk util.Index) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.slots[chunk]
	if !ok || s.token == nil {
		return false
	}
	s.token.Cancel()
	s.token = nil
	s.state = StateCancelled
	return true
}

// Destroy cancela o chunk e remove sua malha, seus colisores e o cache.
func (p *Pipeline) Destroy(chunk util.Index) {
	p.Cancel(chunk)

	p.mu.Lock()
	if s, ok := p.slots[chunk]; ok {
		meshing.PutMeshBuffer(s.buffer)
		delete(p.slots, chunk)
	}
	p.mu.Unlock()

	p.mesh.ClearMesh(chunk)
	p.destroyColliders(chunk)
	if p.opts.Cache != nil {
		p.opts.Cache.Delete(chunk)
	}
}

// Stop cancela tudo, espera os workers e descarta resultados pendentes.
func (p *Pipeline) Stop() {
	p.stop.Do(func() {
		p.cancel()
		p.wg.Wait()
		for {
			j, ok := p.commits.Pop()
			if !ok {
				break
			}
			p.cancelled.Add(1)
			p.release(j)
		}
		for len(p.jobs) > 0 {
			p.cancelled.Add(1)
			p.release(<-p.jobs)
		}
		log.Println("[Pipeline] Parado")
	})
}

// State devolve o estado da regeneração mais recente do chunk.
func (p *Pipeline) State(chunk util.Index) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.slots[chunk]; ok {
		return s.state
	}
	return StateIdle
}

// Running conta os chunks com regeneração em andamento.
func (p *Pipeline) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.state == StateRunning {
			n++
		}
	}
	return n
}

// Stats devolve um retrato dos contadores.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Requested:      p.requested.Load(),
		Committed:      p.committed.Load(),
		Cancelled:      p.cancelled.Load(),
		Failed:         p.failed.Load(),
		CacheHits:      p.cacheHits.Load(),
		TeardownErrors: p.teardownErrors.Load(),
		SinkErrors:     p.sinkErrors.Load(),
		Running:        p.Running(),
		PendingCommits: p.commits.Len(),
	}
}

func (p *Pipeline) slotLocked(chunk util.Index) *slot {
	s, ok := p.slots[chunk]
	if !ok {
		s = &slot{}
		p.slots[chunk] = s
	}
	return s
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.run(j)
			p.commits.Push(j)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pipeline) run(j *job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no worker de regeneração (chunk %s): %v", j.region.Chunk, r)
			j.outcome = Outcome{Status: StatusFailed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p.beforeRun != nil {
		p.beforeRun(j.region.Chunk, j.token.ID())
	}

	ctx := j.token.Context()
	if ctx.Err() != nil {
		j.outcome = Outcome{Status: StatusCancelled}
		return
	}

	if j.meshAsync {
		if p.opts.Mesh == MeshOffloadUnsafe {
			j.buffer = meshing.GetMeshBuffer()
		}
		geo, err := p.buildMesh(ctx, j.region, j.buffer)
		if err != nil {
			j.outcome = outcomeOf(err)
			return
		}
		j.outcome.Geometry = geo
	}

	if j.collidersAsync {
		if j.region.Voxels == nil {
			j.outcome = Outcome{Status: StatusFailed, Err: ErrNoVoxels}
			return
		}
		boxes, err := collision.MergeContext(ctx, j.region.Voxels)
		if err != nil {
			j.outcome = outcomeOf(err)
			return
		}
		j.outcome.Boxes = boxes
	}

	if ctx.Err() != nil {
		j.outcome = Outcome{Status: StatusCancelled}
		return
	}
	j.outcome.Status = StatusCompleted
}

func outcomeOf(err error) Outcome {
	if errors.Is(err, context.Canceled) {
		return Outcome{Status: StatusCancelled}
	}
	return Outcome{Status: StatusFailed, Err: err}
}

// buildMesh gera e compila a malha de r. Com buf == nil a geometria é alocada
// do zero; caso contrário aponta para dentro de buf.
func (p *Pipeline) buildMesh(ctx context.Context, r volume.Region, buf *meshing.MeshBuffer) (meshing.GeometryData, error) {
	if r.Voxels == nil {
		return meshing.GeometryData{}, ErrNoVoxels
	}
	mr, err := meshing.GenerateContext(ctx, r.Voxels, p.opts.VoxelScale)
	if err != nil {
		return meshing.GeometryData{}, err
	}
	if buf == nil {
		return meshing.Compile(mr, p.opts.Compile), nil
	}
	meshing.CompileInto(buf, mr, p.opts.Compile)
	return buf.Geometry, nil
}

func (p *Pipeline) commit(j *job) {
	p.mu.Lock()
	s, ok := p.slots[j.region.Chunk]
	current := ok && s.token == j.token && !j.token.Cancelled()
	p.mu.Unlock()

	if !current || j.outcome.Status == StatusCancelled {
		p.cancelled.Add(1)
		if current {
			p.settle(j, StateCancelled)
		}
		p.release(j)
		return
	}

	if j.outcome.Status == StatusFailed {
		p.fail(j, j.outcome.Err)
		p.release(j)
		return
	}

	if j.meshAsync {
		geo := j.outcome.Geometry
		if j.buffer != nil {
			geo = p.retain(j)
		}
		p.applyMesh(j.region, geo, true)
	}
	if j.collidersAsync {
		p.replaceColliders(j.region, j.outcome.Boxes)
	}
	p.settle(j, StateCommitted)
	p.committed.Add(1)
	p.release(j)
}

// settle encerra o slot se j ainda for a regeneração corrente do chunk.
func (p *Pipeline) settle(j *job, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.slots[j.region.Chunk]; ok && s.token == j.token {
		s.token = nil
		s.state = state
	}
	j.token.Cancel()
}

func (p *Pipeline) fail(j *job, err error) {
	p.failed.Add(1)
	log.Printf("[Pipeline] Falha ao regenerar chunk %s (token %d): %v", j.region.Chunk, j.token.ID(), err)
	p.settle(j, StateFailed)
}

// retain copia o resultado da tarefa para o buffer de longa duração do chunk.
// É a única escrita nesse buffer e acontece na thread de commit.
func (p *Pipeline) retain(j *job) meshing.GeometryData {
	p.mu.Lock()
	s := p.slotLocked(j.region.Chunk)
	if s.buffer == nil {
		s.buffer = &meshing.MeshBuffer{}
	}
	buf := s.buffer
	p.mu.Unlock()

	buf.CopyFrom(j.outcome.Geometry)
	return buf.Geometry
}

func (p *Pipeline) release(j *job) {
	if j.buffer != nil {
		meshing.PutMeshBuffer(j.buffer)
		j.buffer = nil
	}
	j.outcome = Outcome{}
}

func (p *Pipeline) applyMesh(r volume.Region, geo meshing.GeometryData, store bool) {
	if err := p.mesh.ApplyMesh(r.Chunk, r.Offset, geo); err != nil {
		p.sinkErrors.Add(1)
		log.Printf("[Pipeline] Erro ao aplicar malha do chunk %s: %v", r.Chunk, err)
		return
	}
	if store && p.opts.Cache != nil {
		p.opts.Cache.Store(meshing.Result{Chunk: r.Chunk, Revision: r.Revision, Geometry: geo})
	}
}

func (p *Pipeline) destroyColliders(chunk util.Index) {
	if err := p.colliders.DestroyColliders(chunk); err != nil {
		p.teardownErrors.Add(1)
		log.Printf("[Pipeline] Erro ao destruir colisores do chunk %s: %v", chunk, err)
	}
}

// replaceColliders troca todos os colisores do chunk. Falha na destruição é
// registrada mas não impede a reconstrução.
func (p *Pipeline) replaceColliders(r volume.Region, boxes []collision.Box) {
	p.destroyColliders(r.Chunk)
	if err := p.colliders.BuildColliders(r.Chunk, r.Offset, boxes); err != nil {
		p.sinkErrors.Add(1)
		log.Printf("[Pipeline] Erro ao construir colisores do chunk %s: %v", r.Chunk, err)
	}
}
