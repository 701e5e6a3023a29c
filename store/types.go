package store

import "github.com/gatework/gate"

// Alias the storage types into this package for shorter names
// everywhere.

type ReadOnlyKVStore = gate.ReadOnlyKVStore
type KVStore = gate.KVStore
type CacheableKVStore = gate.CacheableKVStore
type KVCacheWrap = gate.KVCacheWrap

// SetDeleter is the write subset of a KVStore.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Batch can buffer writes and apply them all at once.
type Batch interface {
	SetDeleter
	Write() error
}
