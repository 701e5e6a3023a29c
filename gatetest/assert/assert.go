// Package assert provides minimal assertion helpers used throughout
// the tests. For richer assertions use testify, these helpers only
// cover the idioms repeated in nearly every test.
package assert

import (
	"reflect"
	"testing"

	"github.com/gatework/gate/errors"
)

// Nil fails the test if the value is not nil.
func Nil(t testing.TB, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails the test if the two values are not equal.
func Equal(t testing.TB, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal\nwant %+v\n got %+v", want, got)
	}
}

// IsErr fails the test if the error does not match the wanted error
// class. Use a nil want to require success.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("want no error, got %+v", got)
		}
		return
	}
	if c, ok := want.(interface{ Is(error) bool }); ok {
		if !c.Is(got) {
			t.Fatalf("want error %q, got %+v", want, got)
		}
		return
	}
	if errors.Code(want) != errors.Code(got) {
		t.Fatalf("want error %q, got %+v", want, got)
	}
}

// Panics fails the test if calling fn does not panic.
func Panics(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		if recover() == nil {
			t.Fatal("want a panic")
		}
	}()
	fn()
}
