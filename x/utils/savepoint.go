package utils

import (
	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// Savepoint will isolate all data store changes of the wrapped
// handlers and only commit them when the handler returns success.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ gate.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator. Without calling one of
// the On methods it is a noop.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that isolates Check.
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{onCheck: true, onDeliver: s.onDeliver}
}

// OnDeliver returns a savepoint that isolates Deliver.
func (s Savepoint) OnDeliver() Savepoint {
	return Savepoint{onCheck: s.onCheck, onDeliver: true}
}

// Check runs the next checker against a cache wrap of the store and
// writes the cache on success only.
func (s Savepoint) Check(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Checker) (*gate.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cache, err := cacheWrap(store)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return res, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write cache")
	}
	return res, nil
}

// Deliver runs the next deliverer against a cache wrap of the store
// and writes the cache on success only.
func (s Savepoint) Deliver(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Deliverer) (*gate.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	cache, err := cacheWrap(store)
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return res, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write cache")
	}
	return res, nil
}

func cacheWrap(store gate.KVStore) (gate.KVCacheWrap, error) {
	cached, ok := store.(gate.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDatabase, "store %T does not support savepoints", store)
	}
	return cached.CacheWrap(), nil
}
