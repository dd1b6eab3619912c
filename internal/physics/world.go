// Package physics mantém os colisores estáticos dos chunks em espaço de mundo.
package physics

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"VoxelForge/internal/collision"
	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrClosed é devolvido por operações num mundo já fechado.
var ErrClosed = errors.New("mundo físico fechado")

// Body é um colisor estático de um chunk.
type Body struct {
	Chunk  util.Index
	Box    collision.Box // em voxels, relativo ao chunk
	Bounds AABB          // em espaço de mundo
}

// World guarda os corpos de cada chunk. Cada chunk é sempre substituído por
// inteiro: DestroyColliders e depois BuildColliders.
type World struct {
	mu     sync.RWMutex
	scale  mgl32.Vec3
	bodies map[util.Index][]Body
	closed bool
}

// NewWorld cria um mundo para voxels com a escala dada.
func NewWorld(scale mgl32.Vec3) *World {
	return &World{
		scale:  scale,
		bodies: make(map[util.Index][]Body),
	}
}

func (w *World) DestroyColliders(chunk util.Index) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("destruir colisores de %s: %w", chunk, ErrClosed)
	}
	delete(w.bodies, chunk)
	return nil
}

// BuildColliders converte as caixas para espaço de mundo. offset é a posição
// do chunk no mundo. O slice boxes não é retido.
func (w *World) BuildColliders(chunk util.Index, offset mgl32.Vec3, boxes []collision.Box) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("construir colisores de %s: %w", chunk, ErrClosed)
	}
	if old := len(w.bodies[chunk]); old > 0 {
		log.Printf("[Physics] Chunk %s ainda tinha %d corpos; substituindo", chunk, old)
	}
	if len(boxes) == 0 {
		delete(w.bodies, chunk)
		return nil
	}

	bodies := make([]Body, 0, len(boxes))
	for _, b := range boxes {
		center, extents := b.World(w.scale)
		bodies = append(bodies, Body{
			Chunk:  chunk,
			Box:    b,
			Bounds: FromCenter(center.Add(offset), extents),
		})
	}
	w.bodies[chunk] = bodies
	return nil
}

// Bodies devolve uma cópia dos corpos do chunk.
func (w *World) Bodies(chunk util.Index) []Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Body(nil), w.bodies[chunk]...)
}

// Each visita todos os corpos enquanto fn devolver true.
func (w *World) Each(fn func(Body) bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, list := range w.bodies {
		for _, b := range list {
			if !fn(b) {
				return
			}
		}
	}
}

// Contains informa se o ponto está dentro de algum corpo.
func (w *World) Contains(p mgl32.Vec3) bool {
	found := false
	w.Each(func(b Body) bool {
		found = b.Bounds.Contains(p)
		return !found
	})
	return found
}

// Overlapping devolve os corpos que intersectam box.
func (w *World) Overlapping(box AABB) []Body {
	var out []Body
	w.Each(func(b Body) bool {
		if b.Bounds.Intersects(box) {
			out = append(out, b)
		}
		return true
	})
	return out
}

// Len conta todos os corpos.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, list := range w.bodies {
		n += len(list)
	}
	return n
}

// Close descarta os corpos; chamadas seguintes falham com ErrClosed.
func (w *World) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.bodies = make(map[util.Index][]Body)
}
