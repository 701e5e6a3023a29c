package gate

import (
	"reflect"

	"github.com/gatework/gate/errors"
)

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports both Marshal and Unmarshal.
//
// This is separate from Marshaller, as Unmarshal almost always requires
// a pointer, and functions that only need to marshal bytes can use the
// Marshaller interface to accept non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is a request for the state machine to take an action.
// It is just the action, all authentication information sits in the
// wrapping Tx.
type Msg interface {
	Persistent

	// Validate performs a sanity check on the message content that
	// does not require any state access.
	Validate() error

	// Path returns the routing path of the message, used by the
	// router to locate the proper handler. Must be of the form
	// "extension/action".
	Path() string
}

// Tx represents the data sent from the user to the chain. It includes
// the actual message, along with whatever information the middleware
// stack needs to authenticate the sender.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from the transaction, validates it and
// loads it into the destination. Destination must be a pointer of the
// same concrete type as the message carried by the transaction.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	d := reflect.ValueOf(destination)
	m := reflect.ValueOf(msg)
	if d.Type() != m.Type() {
		return errors.Wrapf(errors.ErrType, "want %T, got %T", destination, msg)
	}
	d.Elem().Set(m.Elem())
	return nil
}
