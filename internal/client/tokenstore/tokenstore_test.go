package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser() *models.User {
	return &models.User{
		ID:            7,
		Email:         "asha@apnabank.in",
		FirstName:     "Asha",
		LastName:      "Rao",
		Role:          models.RoleCustomer,
		EmailVerified: true,
		PhoneNumber:   "9876543210",
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())

	require.NoError(t, s.Save(ctx, "tok-123", sampleUser()))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Complete())
	assert.Equal(t, "tok-123", snap.Token)
	assert.Equal(t, sampleUser(), snap.User)
}

func TestSave_NilUserRejected(t *testing.T) {
	s := New(storage.NewMemoryStore())
	require.Error(t, s.Save(context.Background(), "tok", nil))
}

func TestClear_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := New(backend)
	require.NoError(t, backend.Set(ctx, "unrelated", []byte("keep")))
	require.NoError(t, s.Save(ctx, "tok", sampleUser()))

	require.NoError(t, s.Clear(ctx))
	once, err := backend.List(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	twice, err := backend.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, map[string][]byte{"unrelated": []byte("keep")}, twice)
}

func TestLoad_Empty(t *testing.T) {
	snap, err := New(storage.NewMemoryStore()).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Complete())
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
	assert.NoError(t, snap.UserErr)
}

func TestLoad_CorruptUserFailsClosed(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, common.TokenKey, []byte("tok")))
	require.NoError(t, backend.Set(ctx, common.UserKey, []byte("{not json")))

	snap, err := New(backend).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", snap.Token)
	assert.Nil(t, snap.User)
	assert.ErrorIs(t, snap.UserErr, common.ErrCorruptSession)
	assert.False(t, snap.Complete())
}

func TestToken_UnwrapsJSONForm(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := New(backend)

	require.NoError(t, backend.Set(ctx, common.TokenKey, []byte(`{"token":"inner"}`)))
	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inner", tok)

	require.NoError(t, backend.Set(ctx, common.TokenKey, []byte(`{broken`)))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "{broken", tok)
}

type failingStore struct{ storage.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }

func TestLoad_BackendErrorPropagates(t *testing.T) {
	_, err := New(failingStore{storage.NewMemoryStore()}).Load(context.Background())
	require.EqualError(t, err, "disk gone")
}
