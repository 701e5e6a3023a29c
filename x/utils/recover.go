package utils

import (
	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// Recover is a decorator that turns handler panics into errors, so a
// single broken message cannot take down the whole process.
type Recover struct{}

var _ gate.Decorator = Recover{}

// NewRecover creates a Recover decorator.
func NewRecover() Recover {
	return Recover{}
}

// Check turns panics from the next checker into errors.
func (r Recover) Check(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Checker) (res *gate.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics from the next deliverer into errors.
func (r Recover) Deliver(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Deliverer) (res *gate.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
