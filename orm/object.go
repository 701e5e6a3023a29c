package orm

import (
	"reflect"

	"github.com/gatework/gate/errors"
)

// SimpleObj wraps a key and a value together. It can be used as a
// template for type-safe objects.
type SimpleObj struct {
	key   []byte
	value Model
}

var _ Object = (*SimpleObj)(nil)

// NewSimpleObj combines a key and a value into an object.
func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{
		key:   key,
		value: value,
	}
}

// Value gets the value stored in the object.
func (o SimpleObj) Value() Model {
	return o.value
}

// Key returns the key to store the object under.
func (o SimpleObj) Key() []byte {
	return o.key
}

// SetKey updates the object key.
func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Validate makes sure the fields aren't empty and delegates to the
// value validator.
func (o SimpleObj) Validate() error {
	if len(o.key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing key")
	}
	if o.value == nil {
		return errors.Wrap(errors.ErrEmpty, "missing value")
	}
	return o.value.Validate()
}

// Clone makes a new object with an empty value of the same concrete
// type, ready to be loaded into.
func (o *SimpleObj) Clone() Object {
	res := &SimpleObj{
		value: reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Model),
	}
	// Only copy the key if non-nil.
	if len(o.key) > 0 {
		res.key = append([]byte(nil), o.key...)
	}
	return res
}
