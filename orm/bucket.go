package orm

import (
	"fmt"
	"regexp"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a generic holder that stores data of one type under a
// common key prefix.
//
// This is a building block that should generally be hidden behind a
// type-safe wrapper to ensure all data is of the same type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
}

// NewBucket creates a bucket to store data under the given name
// prefix. The proto object is cloned for every read.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including the prefix. We
// copy into a new array rather than use append, so that consecutive
// calls do not overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get fetches one element, returning (nil, nil) on a miss.
func (b Bucket) Get(db gate.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Has checks whether an element is stored under the key.
func (b Bucket) Has(db gate.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Parse takes a key and value data and reconstructs the object this
// bucket would return from Get. Exposed mainly as a test helper.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	obj.SetKey(key)
	return obj, nil
}

// Save writes a model; it must be of the same type as proto.
func (b Bucket) Save(db gate.KVStore, model Object) error {
	if err := model.Validate(); err != nil {
		return errors.Wrap(err, "invalid object")
	}
	bz, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	return db.Set(b.DBKey(model.Key()), bz)
}

// Delete removes the value stored under the key. Deleting a missing
// key is a noop.
func (b Bucket) Delete(db gate.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}
