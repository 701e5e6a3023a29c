package orm

import (
	"encoding/json"
	"testing"

	"github.com/gatework/gate/errors"
	"github.com/gatework/gate/store"
)

// counter is a minimal model used to exercise the buckets.
type counter struct {
	Count int64 `json:"count"`
}

func (c *counter) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *counter) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, c)
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func TestModelBucketPutOne(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Count: 7}); err != nil {
		t.Fatalf("cannot store: %s", err)
	}

	var got counter
	if err := b.One(db, []byte("c1"), &got); err != nil {
		t.Fatalf("cannot fetch: %s", err)
	}
	if got.Count != 7 {
		t.Fatalf("want 7, got %d", got.Count)
	}
}

func TestModelBucketOneMissing(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	var got counter
	if err := b.One(db, []byte("unknown"), &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound, got %+v", err)
	}
}

func TestModelBucketPutInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Count: -1}); !errors.ErrModel.Is(err) {
		t.Fatalf("want ErrModel, got %+v", err)
	}
}

func TestModelBucketDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Delete(db, []byte("unknown")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("deleting a missing entity: want ErrNotFound, got %+v", err)
	}

	if err := b.Put(db, []byte("c1"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot store: %s", err)
	}
	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete: %s", err)
	}

	var got counter
	if err := b.One(db, []byte("c1"), &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound after delete, got %+v", err)
	}
}

func TestBucketsDoNotOverlap(t *testing.T) {
	db := store.MemStore()
	ba := NewModelBucket("aaa", &counter{})
	bb := NewModelBucket("bbb", &counter{})

	if err := ba.Put(db, []byte("k"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot store: %s", err)
	}

	var got counter
	if err := bb.One(db, []byte("k"), &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("buckets must be isolated, got %+v", err)
	}
}
