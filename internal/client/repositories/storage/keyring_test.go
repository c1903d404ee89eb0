package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		keyring.MockInit()
		return NewKeyringStore("com.apnabank.bankfront.test")
	})
}

func TestKeyringStore_IndexTracksKeys(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore("svc")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "a", []byte("2")))
	require.NoError(t, s.Set(ctx, "b", []byte("3")))
	require.NoError(t, s.Delete(ctx, "a"))

	keys, err := s.readIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestKeyringStore_MockErrorIsWrapped(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	s := NewKeyringStore("svc")

	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, assert.AnError)
	require.ErrorContains(t, err, "failed to get storage[k]")
}
