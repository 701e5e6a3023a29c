package gate

// ReadOnlyKVStore is a simple interface to read data.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Errors on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Errors on nil key.
	Has(key []byte) (bool, error)
}

// KVStore is a simple interface to get/set data.
//
// All records this repository stores are point-addressed by a derived
// address, so no iteration primitives are part of the contract.
type KVStore interface {
	ReadOnlyKVStore

	// Set overwrites the key. Errors on nil key or nil value.
	Set(key, value []byte) error

	// Delete deletes the key. Errors on nil key.
	Delete(key []byte) error
}

// CacheableKVStore is a KVStore that supports CacheWrap, which
// groups temporary writes that may be committed or discarded together.
// Like Postgresql SAVEPOINT / ROLLBACK TO SAVEPOINT.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch-pad of uncommitted data on top of a backing
// store. At the end, call Write to apply the writes to the backing
// store, or Discard to drop them.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}
