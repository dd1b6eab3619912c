package pipeline

import "context"

// Token é o token de cancelamento cooperativo de uma regeneração.
// A identidade do ponteiro é o que decide se um resultado ainda pode ser aplicado.
type Token struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func newToken(parent context.Context, id uint64) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{id: id, ctx: ctx, cancel: cancel}
}

// ID identifica a regeneração.
func (t *Token) ID() uint64 { return t.id }

// Context é observado pelos algoritmos de malha e colisão.
func (t *Token) Context() context.Context { return t.ctx }

// Cancel sinaliza o cancelamento. Pode ser chamado mais de uma vez.
func (t *Token) Cancel() { t.cancel() }

// Cancelled informa se o token foi sinalizado.
func (t *Token) Cancelled() bool { return t.ctx.Err() != nil }
