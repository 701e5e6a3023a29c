package store

import (
	"github.com/gatework/gate/errors"
)

// op represents one write operation to be replayed on a backing store.
type op struct {
	delete bool
	key    []byte
	value  []byte
}

func (o op) apply(out SetDeleter) error {
	if o.delete {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch buffers writes and applies them in order on Write.
// It provides no atomicity guarantees by itself, the caller must layer
// it over a store where partial application cannot be observed.
type NonAtomicBatch struct {
	out SetDeleter
	ops []op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch that writes into the given
// store.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{
		out: out,
	}
}

// Set adds a set operation to the batch.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "batch set: nil key")
	}
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

// Delete adds a delete operation to the batch.
func (b *NonAtomicBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "batch delete: nil key")
	}
	b.ops = append(b.ops, op{delete: true, key: key})
	return nil
}

// Write applies all buffered operations in order and resets the batch.
func (b *NonAtomicBatch) Write() error {
	for _, o := range b.ops {
		if err := o.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// EmptyKVStore is a KVStore that holds nothing and silently swallows
// all writes. It serves as the bottom layer of a MemStore stack.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

func (e EmptyKVStore) Set(key, value []byte) error { return nil }

func (e EmptyKVStore) Delete(key []byte) error { return nil }

// NewBatch returns a batch that can write to this store.
func (e EmptyKVStore) NewBatch() Batch { return NewNonAtomicBatch(e) }
