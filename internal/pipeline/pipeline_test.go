package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"VoxelForge/internal/collision"
	"VoxelForge/internal/meshing"
	"VoxelForge/internal/volume"
	"VoxelForge/shared/util"
	"VoxelForge/shared/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

var stone = voxel.New([4]uint8{120, 120, 120, 255})

type recordingSink struct {
	mu          sync.Mutex
	applied     map[util.Index]int // triângulos da última malha
	applies     int
	cleared     int
	built       map[util.Index][]collision.Box
	builds      int
	destroys    int
	destroyErr  error
	lastOffset  mgl32.Vec3
	lastVertex0 float32
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		applied: make(map[util.Index]int),
		built:   make(map[util.Index][]collision.Box),
	}
}

func (s *recordingSink) ApplyMesh(chunk util.Index, offset mgl32.Vec3, geo meshing.GeometryData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[chunk] = geo.TriangleCount()
	s.applies++
	s.lastOffset = offset
	if len(geo.Vertices) > 0 {
		s.lastVertex0 = geo.Vertices[0]
	}
	return nil
}

func (s *recordingSink) ClearMesh(chunk util.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.applied, chunk)
	s.cleared++
}

func (s *recordingSink) DestroyColliders(chunk util.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroys++
	delete(s.built, chunk)
	return s.destroyErr
}

func (s *recordingSink) BuildColliders(chunk util.Index, offset mgl32.Vec3, boxes []collision.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	s.built[chunk] = append([]collision.Box(nil), boxes...)
	return nil
}

func (s *recordingSink) triangles(chunk util.Index) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.applied[chunk]
	return n, ok
}

func (s *recordingSink) counts() (applies, builds, destroys int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applies, s.builds, s.destroys
}

// region monta um snapshot 4x4x4 com os voxels dados ativos.
func region(chunk util.Index, rev uint64, active ...util.Index) volume.Region {
	g := voxel.MustNewGrid(util.NewIndex(4, 4, 4))
	for _, i := range active {
		g.Set(i, stone)
	}
	origin := chunk.Mul(util.NewIndex(4, 4, 4))
	return volume.Region{
		Chunk:    chunk,
		Origin:   origin,
		Voxels:   g,
		Offset:   util.ToVec3(origin),
		Revision: rev,
	}
}

// waitFor processa commits até cond ser verdadeira.
func waitFor(t *testing.T, p *Pipeline, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout esperando condição (stats=%+v)", p.Stats())
		}
		p.ProcessCommits(0)
		time.Sleep(time.Millisecond)
	}
}

var chunk0 = util.NewIndex(0, 0, 0)

func TestParseStrategies(t *testing.T) {
	for _, name := range []string{"inline", "offload-safe", "offload-unsafe"} {
		s, err := ParseMeshStrategy(name)
		if err != nil || s.String() != name {
			t.Errorf("ParseMeshStrategy(%q) = %v, %v", name, s, err)
		}
	}
	for _, name := range []string{"inline", "offload"} {
		s, err := ParseColliderStrategy(name)
		if err != nil || s.String() != name {
			t.Errorf("ParseColliderStrategy(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := ParseMeshStrategy("gpu"); err == nil {
		t.Error("estratégia inválida aceita")
	}
	if _, err := ParseColliderStrategy("gpu"); err == nil {
		t.Error("estratégia inválida aceita")
	}
}

func TestInlineAppliesSynchronously(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshInline, Collider: ColliderInline, GenerateColliders: true, Workers: 1}, sink, sink)
	defer p.Stop()

	chunk := util.NewIndex(1, 0, 0)
	p.Request(region(chunk, 1, util.NewIndex(0, 0, 0)))

	if got := p.State(chunk); got != StateCommitted {
		t.Fatalf("State = %v, want committed", got)
	}
	if n, ok := sink.triangles(chunk); !ok || n != 12 {
		t.Fatalf("triângulos = %d (%v), want 12", n, ok)
	}
	if sink.lastOffset != (mgl32.Vec3{4, 0, 0}) {
		t.Errorf("offset = %v, want (4,0,0)", sink.lastOffset)
	}
	if boxes := sink.built[chunk]; len(boxes) != 1 {
		t.Errorf("boxes = %v, want 1", boxes)
	}
	if _, _, destroys := sink.counts(); destroys != 1 {
		t.Errorf("destroys = %d, want 1 (destruir antes de construir)", destroys)
	}
	if n := p.ProcessCommits(0); n != 0 {
		t.Errorf("ProcessCommits = %d, want 0 no modo inline", n)
	}
}

func TestOffloadAppliesOnlyAtCommit(t *testing.T) {
	for _, mode := range []MeshStrategy{MeshOffloadSafe, MeshOffloadUnsafe} {
		t.Run(mode.String(), func(t *testing.T) {
			sink := newRecordingSink()
			p := New(Options{Mesh: mode, Collider: ColliderOffload, GenerateColliders: true, Workers: 2}, sink, sink)
			defer p.Stop()

			p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0), util.NewIndex(1, 0, 0)))

			// Nada chega aos sinks antes do commit.
			for p.Stats().PendingCommits == 0 {
				time.Sleep(time.Millisecond)
			}
			if applies, builds, _ := sink.counts(); applies != 0 || builds != 0 {
				t.Fatalf("sinks tocados fora do commit: applies=%d builds=%d", applies, builds)
			}

			waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
			if n, _ := sink.triangles(chunk0); n != 20 {
				t.Errorf("triângulos = %d, want 20", n)
			}
			want := []collision.Box{{Start: util.NewIndex(0, 0, 0), Size: util.NewIndex(2, 1, 1)}}
			if got := sink.built[chunk0]; len(got) != 1 || got[0] != want[0] {
				t.Errorf("boxes = %v, want %v", got, want)
			}
		})
	}
}

func TestSupersededResultIsDiscarded(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Collider: ColliderOffload, GenerateColliders: true, Workers: 2}, sink, sink)
	defer p.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	p.beforeRun = func(util.Index, uint64) {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
	}

	// R1: um voxel, fica preso no worker até R2 terminar
	id1 := p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	<-started
	// R2: dois voxels separados
	id2 := p.Request(region(chunk0, 2, util.NewIndex(0, 0, 0), util.NewIndex(2, 2, 2)))
	if id2 <= id1 {
		t.Fatalf("ids fora de ordem: %d, %d", id1, id2)
	}

	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
	close(release)
	waitFor(t, p, func() bool { return p.Stats().Cancelled == 1 })

	if n, _ := sink.triangles(chunk0); n != 24 {
		t.Errorf("triângulos = %d, want 24 (resultado de R2)", n)
	}
	applies, builds, _ := sink.counts()
	if applies != 1 || builds != 1 {
		t.Errorf("applies=%d builds=%d, want 1 e 1", applies, builds)
	}
	if got := len(sink.built[chunk0]); got != 2 {
		t.Errorf("boxes = %d, want 2", got)
	}
	if st := p.Stats(); st.Committed != 1 || st.Requested != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestStaleResultQueuedBeforeRelaunch(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 1}, sink, sink)
	defer p.Stop()

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	// R1 termina e fica na fila de commit sem ser aplicado.
	for p.Stats().PendingCommits == 0 {
		time.Sleep(time.Millisecond)
	}
	p.Request(region(chunk0, 2, util.NewIndex(0, 0, 0), util.NewIndex(2, 2, 2)))

	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
	if n, _ := sink.triangles(chunk0); n != 24 {
		t.Errorf("triângulos = %d, want 24", n)
	}
	if applies, _, _ := sink.counts(); applies != 1 {
		t.Errorf("applies = %d, want 1", applies)
	}
	if st := p.Stats(); st.Cancelled != 1 {
		t.Errorf("Cancelled = %d, want 1", st.Cancelled)
	}
}

func TestCancelDropsResult(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 1}, sink, sink)
	defer p.Stop()

	release := make(chan struct{})
	p.beforeRun = func(util.Index, uint64) { <-release }

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	if !p.Cancel(chunk0) {
		t.Fatal("Cancel = false com tarefa em andamento")
	}
	if p.Cancel(chunk0) {
		t.Error("segundo Cancel = true")
	}
	close(release)

	waitFor(t, p, func() bool { return p.Stats().Cancelled == 1 })
	if got := p.State(chunk0); got != StateCancelled {
		t.Errorf("State = %v, want cancelled", got)
	}
	if applies, _, _ := sink.counts(); applies != 0 {
		t.Errorf("applies = %d, want 0", applies)
	}
}

func TestFailureKeepsPreviousGeometry(t *testing.T) {
	for _, mode := range []MeshStrategy{MeshInline, MeshOffloadSafe} {
		t.Run(mode.String(), func(t *testing.T) {
			sink := newRecordingSink()
			p := New(Options{Mesh: mode, Workers: 1}, sink, sink)
			defer p.Stop()

			p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
			waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })

			p.Request(volume.Region{Chunk: chunk0, Revision: 2})
			waitFor(t, p, func() bool { return p.State(chunk0) == StateFailed })

			if n, ok := sink.triangles(chunk0); !ok || n != 12 {
				t.Errorf("geometria anterior perdida: %d %v", n, ok)
			}
			if st := p.Stats(); st.Failed != 1 {
				t.Errorf("Failed = %d, want 1", st.Failed)
			}
		})
	}
}

func TestWorkerPanicIsFailure(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 1}, sink, sink)
	defer p.Stop()

	var calls atomic.Int32
	p.beforeRun = func(util.Index, uint64) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	waitFor(t, p, func() bool { return p.State(chunk0) == StateFailed })

	// O worker continua vivo depois do panic.
	p.Request(region(chunk0, 2, util.NewIndex(0, 0, 0)))
	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
}

func TestTeardownErrorDoesNotBlockRebuild(t *testing.T) {
	sink := newRecordingSink()
	sink.destroyErr = errors.New("colisor inválido")
	p := New(Options{Mesh: MeshInline, Collider: ColliderInline, GenerateColliders: true}, sink, sink)
	defer p.Stop()

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))

	_, builds, destroys := sink.counts()
	if destroys != 1 || builds != 1 {
		t.Fatalf("destroys=%d builds=%d, want 1 e 1", destroys, builds)
	}
	if st := p.Stats(); st.TeardownErrors != 1 || st.Committed != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCollidersDisabledDestroysOnly(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshInline, Collider: ColliderOffload, GenerateColliders: false}, sink, sink)
	defer p.Stop()

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	_, builds, destroys := sink.counts()
	if builds != 0 || destroys != 1 {
		t.Errorf("builds=%d destroys=%d, want 0 e 1", builds, destroys)
	}
}

func TestUnsafeRetainedBufferWrittenOnlyAtCommit(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadUnsafe, Workers: 1}, sink, sink)
	defer p.Stop()

	retained := func() *meshing.MeshBuffer {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.slots[chunk0].buffer
	}

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })

	buf := retained()
	if buf == nil {
		t.Fatal("chunk sem buffer retido depois do commit")
	}
	// A primeira face emitida é +X: x = 1 para o voxel (0,0,0).
	if buf.Geometry.Vertices[0] != 1 {
		t.Fatalf("buffer retido x = %v, want 1", buf.Geometry.Vertices[0])
	}

	p.Request(region(chunk0, 2, util.NewIndex(1, 1, 1)))
	// Espera o worker terminar sem aplicar o commit.
	for p.Stats().PendingCommits == 0 {
		time.Sleep(time.Millisecond)
	}

	if buf.Geometry.Vertices[0] != 1 {
		t.Error("worker escreveu no buffer retido antes do commit")
	}

	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
	if retained() != buf {
		t.Error("o buffer retido deveria ser reutilizado entre regenerações")
	}
	// Voxel (1,1,1): a face +X fica em x = 2.
	if buf.Geometry.Vertices[0] != 2 || sink.lastVertex0 != 2 {
		t.Errorf("buffer x = %v, sink x = %v, want 2", buf.Geometry.Vertices[0], sink.lastVertex0)
	}
}

func TestCacheHitSkipsMeshing(t *testing.T) {
	sink := newRecordingSink()
	cache := meshing.NewResultStore()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 1, Cache: cache}, sink, sink)
	defer p.Stop()

	var runs atomic.Int32
	p.beforeRun = func(util.Index, uint64) { runs.Add(1) }

	r := region(chunk0, 7, util.NewIndex(0, 0, 0))
	p.Request(r)
	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
	if cache.Len() != 1 {
		t.Fatalf("cache.Len = %d, want 1", cache.Len())
	}

	p.Request(r)
	// Acerto no cache aplica sem passar pelo worker.
	if got := p.State(chunk0); got != StateCommitted {
		t.Fatalf("State = %v, want committed", got)
	}
	if runs.Load() != 1 {
		t.Errorf("worker rodou %d vezes, want 1", runs.Load())
	}
	if st := p.Stats(); st.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", st.CacheHits)
	}
	if applies, _, _ := sink.counts(); applies != 2 {
		t.Errorf("applies = %d, want 2", applies)
	}
}

func TestDestroyClearsChunk(t *testing.T) {
	sink := newRecordingSink()
	cache := meshing.NewResultStore()
	p := New(Options{Mesh: MeshInline, GenerateColliders: true, Cache: cache}, sink, sink)
	defer p.Stop()

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	p.Destroy(chunk0)

	if _, ok := sink.triangles(chunk0); ok {
		t.Error("malha não removida")
	}
	if _, ok := sink.built[chunk0]; ok {
		t.Error("colisores não removidos")
	}
	if cache.Len() != 0 {
		t.Error("cache não limpo")
	}
	if p.State(chunk0) != StateIdle {
		t.Errorf("State = %v, want idle", p.State(chunk0))
	}
}

func TestSyncRequestsDirtyChunks(t *testing.T) {
	v, err := volume.New(volume.Options{Size: util.NewIndex(8, 4, 4), ChunkSize: util.NewIndex(4, 4, 4), VoxelScale: mgl32.Vec3{1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 2}, sink, sink)
	defer p.Stop()

	v.Set(util.NewIndex(1, 1, 1), stone)
	v.Set(util.NewIndex(5, 1, 1), stone)
	if n := p.Sync(v); n != 2 {
		t.Fatalf("Sync = %d, want 2", n)
	}
	if n := p.Sync(v); n != 0 {
		t.Errorf("segundo Sync = %d, want 0", n)
	}

	right := util.NewIndex(1, 0, 0)
	waitFor(t, p, func() bool {
		return p.State(chunk0) == StateCommitted && p.State(right) == StateCommitted
	})
	if n, _ := sink.triangles(right); n != 12 {
		t.Errorf("triângulos do chunk (1,0,0) = %d, want 12", n)
	}
}

func TestStopDiscardsPending(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadSafe, Workers: 1}, sink, sink)

	p.Request(region(chunk0, 1, util.NewIndex(0, 0, 0)))
	p.Stop()
	p.Stop()

	if n := p.ProcessCommits(0); n != 0 {
		t.Errorf("ProcessCommits depois de Stop = %d", n)
	}
	if applies, _, _ := sink.counts(); applies != 0 {
		t.Errorf("applies = %d, want 0", applies)
	}
	if id := p.Request(region(chunk0, 2)); id != 0 {
		t.Errorf("Request depois de Stop = %d, want 0", id)
	}
}

func TestUnsafeRetainedBufferAcceptsNonIndexedMesh(t *testing.T) {
	sink := newRecordingSink()
	p := New(Options{Mesh: MeshOffloadUnsafe, Workers: 1}, sink, sink)
	defer p.Stop()

	const n = 24
	single := voxel.MustNewGrid(util.NewIndex(n, n, n))
	single.Set(util.NewIndex(0, 0, 0), stone)
	p.Request(volume.Region{Chunk: chunk0, Voxels: single, Revision: 1})
	waitFor(t, p, func() bool { return p.State(chunk0) == StateCommitted })
	if tris, _ := sink.triangles(chunk0); tris != 12 {
		t.Fatalf("triângulos = %d, want 12", tris)
	}

	// Xadrez com vértices demais para índices uint16.
	dense := voxel.MustNewGrid(util.NewIndex(n, n, n))
	active := 0
	for z := int32(0); z < n; z++ {
		for y := int32(0); y < n; y++ {
			for x := int32(0); x < n; x++ {
				if (x+y+z)%2 == 0 {
					dense.Set(util.NewIndex(x, y, z), stone)
					active++
				}
			}
		}
	}
	p.Request(volume.Region{Chunk: chunk0, Voxels: dense, Revision: 2})
	waitFor(t, p, func() bool { return p.Stats().Committed == 2 })

	if tris, _ := sink.triangles(chunk0); tris != active*12 {
		t.Fatalf("triângulos = %d, want %d", tris, active*12)
	}
	p.mu.Lock()
	buf := p.slots[chunk0].buffer
	p.mu.Unlock()
	if buf.Geometry.Indices != nil {
		t.Errorf("buffer retido manteve Indices não-nil (len=%d)", len(buf.Geometry.Indices))
	}
}
