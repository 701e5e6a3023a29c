package multisig

import (
	"context"

	"github.com/gatework/gate"
	"github.com/gatework/gate/x"
)

type contextKey int // local to the multisig module

const (
	contextKeyMultisig contextKey = iota
)

// withMultisig is private, as only the execute handler may authorize
// a call as the group.
func withMultisig(ctx gate.Context, proof gate.Condition) gate.Context {
	return context.WithValue(ctx, contextKeyMultisig, proof)
}

// Authenticate reveals the group condition injected by the execute
// handler, so that whatever processes the forwarded call observes the
// group's address as a signer.
type Authenticate struct {
}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the group condition previously set on this
// context.
func (a Authenticate) GetConditions(ctx gate.Context) []gate.Condition {
	// (val, ok) form to return nil instead of panic if unset.
	val, _ := ctx.Value(contextKeyMultisig).(gate.Condition)
	if val == nil {
		return nil
	}
	return []gate.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions.
func (a Authenticate) HasAddress(ctx gate.Context, addr gate.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
