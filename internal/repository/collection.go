package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/enroll-admin-api/internal/blob"
)

// Collection is an ordered in-memory record set backed by one blob
// document. Mutations touch memory only; durability happens when the
// owning Store persists the collection.
type Collection[T any] struct {
	key   string
	items []T
}

func newCollection[T any](key string) *Collection[T] {
	return &Collection[T]{key: key, items: []T{}}
}

// Key returns the blob document key.
func (c *Collection[T]) Key() string { return c.key }

// Len returns the number of records.
func (c *Collection[T]) Len() int { return len(c.items) }

// All returns a copy of every record in insertion order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Insert appends a record.
func (c *Collection[T]) Insert(item T) {
	c.items = append(c.items, item)
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// FindIndex returns the index of the first match, or -1.
func (c *Collection[T]) FindIndex(pred func(T) bool) int {
	for i, item := range c.items {
		if pred(item) {
			return i
		}
	}
	return -1
}

// Get returns the record at index i.
func (c *Collection[T]) Get(i int) T { return c.items[i] }

// Set replaces the record at index i in place.
func (c *Collection[T]) Set(i int, item T) { c.items[i] = item }

// Update rewrites every record matching pred in place and reports how
// many were touched.
func (c *Collection[T]) Update(pred func(T) bool, apply func(*T)) int {
	n := 0
	for i := range c.items {
		if pred(c.items[i]) {
			apply(&c.items[i])
			n++
		}
	}
	return n
}

// DeleteWhere removes every record matching pred, preserving order, and
// reports how many were removed.
func (c *Collection[T]) DeleteWhere(pred func(T) bool) int {
	kept := c.items[:0]
	removed := 0
	for _, item := range c.items {
		if pred(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	return removed
}

// Count returns the number of records matching pred.
func (c *Collection[T]) Count(pred func(T) bool) int {
	n := 0
	for _, item := range c.items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Filter returns copies of every record matching pred, in order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	out := []T{}
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Replace swaps the whole record set, used by snapshot rollback and the
// trusted restore path.
func (c *Collection[T]) Replace(items []T) {
	c.items = make([]T, len(items))
	copy(c.items, items)
}

// Snapshot returns a copy of the record set for later rollback.
func (c *Collection[T]) Snapshot() []T {
	return c.All()
}

// load reads the collection document; a missing document leaves the
// collection empty and reports found=false.
func (c *Collection[T]) load(ctx context.Context, blobs blob.Store) (bool, error) {
	doc, err := blobs.Load(ctx, c.key)
	if err != nil {
		if errors.Is(err, blob.ErrNoDocument) {
			c.items = []T{}
			return false, nil
		}
		return false, fmt.Errorf("load collection %s: %w", c.key, err)
	}
	items := []T{}
	if err := json.Unmarshal(doc, &items); err != nil {
		return false, fmt.Errorf("decode collection %s: %w", c.key, err)
	}
	c.items = items
	return true, nil
}

// persist writes the whole collection document.
func (c *Collection[T]) persist(ctx context.Context, blobs blob.Store) error {
	doc, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.key, err)
	}
	if err := blobs.Save(ctx, c.key, doc); err != nil {
		return fmt.Errorf("persist collection %s: %w", c.key, err)
	}
	return nil
}
