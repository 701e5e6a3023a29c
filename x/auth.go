// Package x holds the interfaces shared between all extensions, most
// importantly the Authenticator abstraction that decouples handlers
// from whatever mechanism authenticated the transaction.
package x

import (
	"github.com/gatework/gate"
)

// Authenticator is an interface we can use to extract authentication
// info from the context. This should be passed into the constructor of
// handlers, so the authentication system can be swapped without
// touching extension code.
type Authenticator interface {
	// GetConditions reveals all conditions fulfilled by the
	// transaction.
	GetConditions(gate.Context) []gate.Condition

	// HasAddress checks if any fulfilled condition matches this
	// address.
	HasAddress(gate.Context, gate.Address) bool
}

// MultiAuth chains together many authenticators into one.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions combines the conditions from all authenticators.
func (m MultiAuth) GetConditions(ctx gate.Context) []gate.Condition {
	var res []gate.Condition
	for _, impl := range m.impls {
		if add := impl.GetConditions(ctx); len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

// HasAddress returns true iff any authenticator fulfills this address.
func (m MultiAuth) HasAddress(ctx gate.Context, addr gate.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first fulfilled condition if any, otherwise
// nil.
func MainSigner(ctx gate.Context, auth Authenticator) gate.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// GetAddresses returns the addresses for all fulfilled conditions.
func GetAddresses(ctx gate.Context, auth Authenticator) []gate.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]gate.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// HasAllAddresses returns true if all elements in required are
// fulfilled in the context.
func HasAllAddresses(ctx gate.Context, auth Authenticator, required []gate.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}
