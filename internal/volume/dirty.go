package volume

import "VoxelForge/shared/util"

// DirtyTracker é o conjunto de chunks pendentes de regeneração.
// Mark pode ser chamado de qualquer goroutine; DrainAll é chamado uma vez por tick
// pelo driver de agendamento. O tracker não tem timer próprio.
type DirtyTracker struct {
	set *util.UniqueQueue[util.Index]
}

// NewDirtyTracker cria um tracker vazio.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{set: util.NewUniqueQueue[util.Index]()}
}

// Mark insere o chunk no conjunto. Marcar o mesmo chunk várias vezes entre dois
// drenos resulta numa única entrada.
func (d *DirtyTracker) Mark(chunk util.Index) {
	d.set.Enqueue(chunk)
}

// DrainAll retorna e limpa todo o conjunto pendente atomicamente.
func (d *DirtyTracker) DrainAll() []util.Index {
	return d.set.DrainAll()
}

// Pending informa se o chunk está marcado.
func (d *DirtyTracker) Pending(chunk util.Index) bool {
	return d.set.Contains(chunk)
}

// Len retorna o número de chunks pendentes.
func (d *DirtyTracker) Len() int {
	return d.set.Len()
}
