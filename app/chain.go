package app

import (
	"github.com/gatework/gate"
)

// Decorators holds a chain of decorators, first to be called sits at
// the front.
type Decorators struct {
	chain []gate.Decorator
}

// ChainDecorators creates a chain of decorators to wrap around a
// handler.
func ChainDecorators(chain ...gate.Decorator) Decorators {
	return Decorators{chain: chain}
}

// Chain wires the chain around this handler and returns a handler
// that runs the whole stack.
func (d Decorators) Chain(h gate.Handler) gate.Handler {
	res := h
	for i := len(d.chain) - 1; i >= 0; i-- {
		res = chained{decorator: d.chain[i], next: res}
	}
	return res
}

type chained struct {
	decorator gate.Decorator
	next      gate.Handler
}

var _ gate.Handler = chained{}

func (c chained) Check(ctx gate.Context, store gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	return c.decorator.Check(ctx, store, tx, c.next)
}

func (c chained) Deliver(ctx gate.Context, store gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	return c.decorator.Deliver(ctx, store, tx, c.next)
}
