package storage

import "context"

// Store is a string-keyed byte store with the semantics of browser
// localStorage: Get returns (nil, nil) for an absent key, Delete of an absent
// key succeeds, and writes from one process are visible to every other
// process sharing the same backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Batcher is implemented by stores that can apply several writes as one
// unit. Callers fall back to individual Set/Delete calls otherwise.
type Batcher interface {
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// SetMany writes all values, atomically when s implements Batcher.
func SetMany(ctx context.Context, s Store, values map[string][]byte) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany removes all keys, atomically when s implements Batcher. Every
// key is attempted even if an earlier delete fails; the first error wins.
func DeleteMany(ctx context.Context, s Store, keys ...string) error {
	if b, ok := s.(Batcher); ok {
		return b.DeleteMany(ctx, keys...)
	}
	var first error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}
