package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k1", []byte{0x01, 0x02}))

		v, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, []byte{0x01, 0x02}, v)
	})

	t.Run("absent key returns nil, nil", func(t *testing.T) {
		s := newStore(t)
		v, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", []byte("old")))
		require.NoError(t, s.Set(ctx, "k", []byte("new")))

		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("new"), v)
	})

	t.Run("list returns all pairs", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", []byte{0xAA}))
		require.NoError(t, s.Set(ctx, "b", []byte{0xBB, 0xCC}))

		m, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, m, 2)
		assert.Equal(t, []byte{0xAA}, m["a"])
		assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "x", []byte{0x01}))
		require.NoError(t, s.Delete(ctx, "x"))

		v, err := s.Get(ctx, "x")
		require.NoError(t, err)
		require.Nil(t, v)

		require.NoError(t, s.Delete(ctx, "x"))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", []byte{1}))
		require.NoError(t, s.Set(ctx, "b", []byte{2}))
		require.NoError(t, s.Clear(ctx))

		m, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("batch helpers", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, SetMany(ctx, s, map[string][]byte{"t": []byte("tok"), "u": []byte("{}")}))

		m, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, m, 2)

		require.NoError(t, DeleteMany(ctx, s, "t", "u", "never-set"))
		m, err = s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})
}
