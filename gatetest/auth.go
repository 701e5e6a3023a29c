package gatetest

import (
	"context"
	"fmt"

	"github.com/gatework/gate"
	"github.com/gatework/gate/x"
)

// Auth is a mock implementing x.Authenticator interface. It
// authenticates the fixed set of conditions it was created with,
// regardless of context.
type Auth struct {
	// Signer is returned for any condition check if not nil.
	Signer gate.Condition

	// Signers are returned for any condition check if provided.
	// This attribute takes precedence over Signer.
	Signers []gate.Condition
}

var _ x.Authenticator = (*Auth)(nil)

func (a *Auth) GetConditions(gate.Context) []gate.Condition {
	if len(a.Signers) > 0 {
		return a.Signers
	}
	if a.Signer != nil {
		return []gate.Condition{a.Signer}
	}
	return nil
}

func (a *Auth) HasAddress(ctx gate.Context, addr gate.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface. It reads
// conditions from the context, stored there under a fixed key. Unlike
// Auth it allows using different conditions for each call.
type CtxAuth struct {
	// Key under which the conditions are stored in the context.
	Key string
}

var _ x.Authenticator = (*CtxAuth)(nil)

// SetConditions stores the conditions on the context.
func (a *CtxAuth) SetConditions(ctx gate.Context, conds ...gate.Condition) gate.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx gate.Context) []gate.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]gate.Condition)
	if !ok {
		panic("instead of conditions, context contains " + fmt.Sprint(val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx gate.Context, addr gate.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

type ctxAuthKey string
