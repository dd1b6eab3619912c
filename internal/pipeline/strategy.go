package pipeline

import "fmt"

// MeshStrategy define onde a malha é gerada e compilada.
type MeshStrategy int

const (
	// MeshInline gera, compila e aplica na própria chamada de Request.
	MeshInline MeshStrategy = iota
	// MeshOffloadSafe gera e compila num worker, num buffer novo que pertence à tarefa.
	// Só a aplicação no sink acontece na thread de commit.
	MeshOffloadSafe
	// MeshOffloadUnsafe mantém um buffer de longa duração por chunk. O worker
	// compila num buffer do pool que pertence só à tarefa; o commit copia o
	// resultado para o buffer do chunk, a única escrita nele.
	MeshOffloadUnsafe
)

func (s MeshStrategy) String() string {
	switch s {
	case MeshInline:
		return "inline"
	case MeshOffloadSafe:
		return "offload-safe"
	case MeshOffloadUnsafe:
		return "offload-unsafe"
	}
	return fmt.Sprintf("MeshStrategy(%d)", int(s))
}

// ParseMeshStrategy converte o nome usado na configuração.
func ParseMeshStrategy(s string) (MeshStrategy, error) {
	switch s {
	case "inline", "":
		return MeshInline, nil
	case "offload-safe":
		return MeshOffloadSafe, nil
	case "offload-unsafe":
		return MeshOffloadUnsafe, nil
	}
	return MeshInline, fmt.Errorf("estratégia de malha desconhecida %q", s)
}

// ColliderStrategy define onde as caixas de colisão são calculadas.
type ColliderStrategy int

const (
	ColliderInline ColliderStrategy = iota
	ColliderOffload
)

func (s ColliderStrategy) String() string {
	switch s {
	case ColliderInline:
		return "inline"
	case ColliderOffload:
		return "offload"
	}
	return fmt.Sprintf("ColliderStrategy(%d)", int(s))
}

// ParseColliderStrategy converte o nome usado na configuração.
func ParseColliderStrategy(s string) (ColliderStrategy, error) {
	switch s {
	case "inline", "":
		return ColliderInline, nil
	case "offload":
		return ColliderOffload, nil
	}
	return ColliderInline, fmt.Errorf("estratégia de colisão desconhecida %q", s)
}

// State é o estado da regeneração mais recente de um chunk.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCommitted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status é o desfecho de uma tarefa de regeneração.
// Cancelamento é um desfecho, não um erro.
type Status int

const (
	StatusCompleted Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
