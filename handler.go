package gate

import (
	"encoding/json"
)

// Handler is a core engine that can process a few specific messages.
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler used to verify the validity of a
// transaction without applying it. It is its own interface to allow
// better type control in Decorator arguments.
type Checker interface {
	Check(ctx Context, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler used to execute a transaction.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// authentication, logging or savepoints, to many handlers.
type Decorator interface {
	Check(ctx Context, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register a handler under the path of the
// messages it processes; the setup side of a router.
type Registry interface {
	Handle(Msg, Handler)
}

// CheckResult captures any non-error response from validating a
// transaction.
type CheckResult struct {
	// Data is a machine-parseable return value, like the id of a
	// created entity.
	Data []byte

	// Log is a human readable success message.
	Log string

	// GasAllocated is the maximum units of work we allow this
	// transaction to perform.
	GasAllocated int64
}

// DeliverResult captures any non-error response from executing a
// transaction.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a
	// created entity.
	Data []byte

	// Log is a human readable success message.
	Log string
}

// Options are the app options. Each extension can look up its key and
// parse the raw json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the value stored under a given key and parses the
// json into the given obj. Noop and no error if the key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize extensions from
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
