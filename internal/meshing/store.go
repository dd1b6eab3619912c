package meshing

import (
	"sync"

	"VoxelForge/shared/util"
)

// ResultStore armazena na RAM a última geometria aplicada de cada chunk
// para evitar re-processamento quando a revisão não mudou.
type ResultStore struct {
	mu      sync.RWMutex
	results map[util.Index]Result
}

// NewResultStore cria um novo repositório de resultados.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[util.Index]Result),
	}
}

// Get retorna um resultado se ele existir e for da mesma revisão.
func (s *ResultStore) Get(chunk util.Index, revision uint64) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.results[chunk]
	if ok && res.Revision == revision {
		// Retornamos um clone para evitar que modificações externas afetem o cache
		return res.Clone(), true
	}
	return Result{}, false
}

// Store salva um resultado no repositório, substituindo o anterior do chunk.
func (s *ResultStore) Store(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Guardamos um clone para garantir que o cache seja imutável
	s.results[res.Chunk] = res.Clone()
}

// Delete remove o resultado de um chunk.
func (s *ResultStore) Delete(chunk util.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, chunk)
}

// Len retorna o número de chunks em cache.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clone realiza uma cópia profunda de um Result.
func (r Result) Clone() Result {
	return Result{
		Chunk:    r.Chunk,
		Revision: r.Revision,
		Geometry: r.Geometry.Clone(),
	}
}
