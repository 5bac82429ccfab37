package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Bucket stores values of one type as JSON under a bucket name.
type Bucket[T any] struct {
	rw   ReadWriter
	name string
}

// NewBucket returns a typed view of the named bucket.
func NewBucket[T any](rw ReadWriter, name string) *Bucket[T] {
	return &Bucket[T]{rw: rw, name: name}
}

// In returns the same bucket bound to tx, for use inside Store.Update.
func (b *Bucket[T]) In(tx ReadWriter) *Bucket[T] {
	return &Bucket[T]{rw: tx, name: b.name}
}

// Name returns the bucket name.
func (b *Bucket[T]) Name() string { return b.name }

func (b *Bucket[T]) Get(key string) (T, error) {
	var v T
	data, err := b.rw.Get(b.name, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", b.name, key, err)
	}
	return v, nil
}

func (b *Bucket[T]) Put(key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", b.name, key, err)
	}
	return b.rw.Put(b.name, key, data)
}

func (b *Bucket[T]) Delete(key string) error {
	return b.rw.Delete(b.name, key)
}

// Has reports whether key is present.
func (b *Bucket[T]) Has(key string) (bool, error) {
	_, err := b.rw.Get(b.name, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List decodes every value in insertion order.
func (b *Bucket[T]) List() ([]T, error) {
	entries, err := b.rw.List(b.name)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", b.name, e.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}
