/*
Package orm provides an easy to use db wrapper.

It breaks the state space into prefixed sections called buckets. Each
bucket contains only one type of object, addressed by an arbitrary
primary key. A thin typed facade, ModelBucket, hides the Object
plumbing from extension code.
*/
package orm

import (
	"github.com/gatework/gate"
)

// Model is implemented by any entity that can be stored in a bucket.
type Model interface {
	gate.Persistent

	// Validate returns an error if the model is not in a valid state
	// to save to the db (field missing, out of range, ...).
	Validate() error
}

// Object is what is stored in the bucket. Key is joined with the bucket
// prefix to construct the full db key.
type Object interface {
	Keyed
	Cloneable

	// Validate returns an error if the object is not in a valid state
	// to save to the db.
	Validate() error

	Value() Model
}

// Keyed is anything that can identify itself.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable creates a new empty object of the same type that data can
// be loaded into.
type Cloneable interface {
	Clone() Object
}
