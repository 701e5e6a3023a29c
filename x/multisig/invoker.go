package multisig

import (
	"github.com/gatework/gate"
)

// Invoker is the host's signed-invocation capability. Given a call
// descriptor and the authorizing condition of a derived address, the
// host performs the external call as if signed by that address.
//
// The host must execute Invoke inside the same transaction as the
// caller: when Invoke returns an error the whole transaction is rolled
// back, including any state the caller wrote before delegating.
type Invoker interface {
	Invoke(ctx gate.Context, db gate.KVStore, call CallDescriptor, authority gate.Condition) error
}
