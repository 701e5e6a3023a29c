package orm

import (
	"reflect"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// ModelBucket is implemented by buckets that operate on models rather
// than objects.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup
	// is done by the primary key. The result is loaded into the
	// given destination model.
	// This method returns ErrNotFound if the entity does not exist
	// in the database, and ErrType if the given model type cannot
	// contain the stored entity.
	One(db gate.ReadOnlyKVStore, key []byte, dest Model) error

	// Put saves the given model in the database under the key.
	Put(db gate.KVStore, key []byte, m Model) error

	// Has returns whether an entity is stored under the key.
	Has(db gate.ReadOnlyKVStore, key []byte) (bool, error)

	// Delete removes an entity with the given primary key from the
	// database. It returns ErrNotFound if it does not exist.
	Delete(db gate.KVStore, key []byte) error
}

// NewModelBucket returns a ModelBucket instance backed by a prefixed
// bucket holding values of the same type as the given model.
func NewModelBucket(name string, m Model) ModelBucket {
	proto := NewSimpleObj(nil, m)
	return &modelBucket{
		b: NewBucket(name, proto),
	}
}

type modelBucket struct {
	b Bucket
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db gate.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Put(db gate.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Has(db gate.ReadOnlyKVStore, key []byte) (bool, error) {
	return mb.b.Has(db, key)
}

func (mb *modelBucket) Delete(db gate.KVStore, key []byte) error {
	has, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !has {
		return errors.ErrNotFound
	}
	return mb.b.Delete(db, key)
}
