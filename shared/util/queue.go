package util

import "sync"

// UniqueQueue é um conjunto thread-safe que preserva a ordem da primeira inserção.
// Inserções repetidas de uma mesma chave colapsam numa única entrada.
// Usado para marcar chunks sujos entre dois ticks.
type UniqueQueue[K comparable] struct {
	mu      sync.Mutex
	items   []K
	present map[K]struct{}
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable]() *UniqueQueue[K] {
	return &UniqueQueue[K]{
		items:   make([]K, 0, 64),
		present: make(map[K]struct{}),
	}
}

// Enqueue adiciona a chave se ela ainda não estiver presente.
// Retorna true se foi adicionada, false se já existia.
func (q *UniqueQueue[K]) Enqueue(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.present[key]; ok {
		return false
	}
	q.items = append(q.items, key)
	q.present[key] = struct{}{}
	return true
}

// DrainAll retorna todas as chaves pendentes e esvazia a fila numa única operação.
// Um Enqueue concorrente cai inteiro antes ou depois do dreno, nunca no meio.
func (q *UniqueQueue[K]) DrainAll() []K {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]K, 0, cap(out))
	q.present = make(map[K]struct{}, len(out))
	return out
}

// Len retorna o número de chaves na fila.
func (q *UniqueQueue[K]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[key]
	return ok
}

// ThreadSafeQueue é uma fila simples thread-safe (sem unicidade) e sem limite.
// Produtores nunca bloqueiam em Push.
type ThreadSafeQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewThreadSafeQueue cria uma nova fila thread-safe.
func NewThreadSafeQueue[T any]() *ThreadSafeQueue[T] {
	return &ThreadSafeQueue[T]{
		items: make([]T, 0, 64),
	}
}

// Push adiciona um item ao fim da fila.
func (q *ThreadSafeQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Pop remove e retorna o primeiro item. Retorna false se vazia.
func (q *ThreadSafeQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Len retorna o tamanho da fila.
func (q *ThreadSafeQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
