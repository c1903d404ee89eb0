package diag

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiag(t *testing.T, seed map[string]string) (*Diagnostics, *storage.MemoryStore) {
	t.Helper()
	s := storage.NewMemoryStore()
	for k, v := range seed {
		require.NoError(t, s.Set(context.Background(), k, []byte(v)))
	}
	return New(s, logging.Nop()), s
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "abc...", MaskToken("abc"))
	assert.Equal(t, "eyJhbGciOi...", MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.sig"))
}

func TestCheckStatus(t *testing.T) {
	ctx := context.Background()

	d, _ := newDiag(t, map[string]string{
		common.TokenKey: "0123456789abcdef",
		common.UserKey:  `{"id":4,"email":"x@bank.test","role":"USER"}`,
	})
	st, err := d.CheckStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.HasToken)
	assert.Equal(t, "0123456789...", st.MaskedToken)
	assert.True(t, st.HasUser)
	assert.Equal(t, int64(4), st.User.ID)

	d, _ = newDiag(t, map[string]string{common.UserKey: "garbage"})
	st, err = d.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.HasToken)
	assert.False(t, st.HasUser)
	assert.ErrorIs(t, st.UserErr, common.ErrCorruptSession)
}

func TestCheckTokenStorage_Mismatch(t *testing.T) {
	tests := []struct {
		name    string
		current string
		legacy  string
		want    bool
	}{
		{"nothing", "", "", false},
		{"namespaced only", "a", "", false},
		{"legacy only", "", "a", true},
		{"both equal", "a", "a", false},
		{"both differ", "a", "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := map[string]string{}
			if tt.current != "" {
				seed[common.TokenKey] = tt.current
			}
			if tt.legacy != "" {
				seed[common.LegacyTokenKey] = tt.legacy
			}
			d, _ := newDiag(t, seed)
			r, err := d.CheckTokenStorage(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Mismatch)
			assert.Equal(t, common.TokenKey, r.TokenKey)
		})
	}
}

func TestMigrateLegacy(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to migrate", func(t *testing.T) {
		d, _ := newDiag(t, nil)
		res, err := d.MigrateLegacy(ctx)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "No tokens found with old keys", res.Message)
	})

	t.Run("copies and keeps legacy", func(t *testing.T) {
		d, s := newDiag(t, map[string]string{
			common.LegacyTokenKey: "old-token",
			common.LegacyUserKey:  `{"id":1}`,
		})
		res, err := d.MigrateLegacy(ctx)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.TokenMigrated)
		assert.True(t, res.UserMigrated)

		for key, want := range map[string]string{
			common.TokenKey:       "old-token",
			common.LegacyTokenKey: "old-token",
			common.UserKey:        `{"id":1}`,
			common.LegacyUserKey:  `{"id":1}`,
		} {
			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, want, string(got), key)
		}
	})

	t.Run("token only", func(t *testing.T) {
		d, _ := newDiag(t, map[string]string{common.LegacyTokenKey: "t"})
		res, err := d.MigrateLegacy(ctx)
		require.NoError(t, err)
		assert.True(t, res.TokenMigrated)
		assert.False(t, res.UserMigrated)
	})
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	d, s := newDiag(t, map[string]string{
		common.TokenKey:       "a",
		common.UserKey:        "b",
		common.LegacyTokenKey: "c",
		common.LegacyUserKey:  "d",
		"other":               "keep",
	})
	require.NoError(t, d.ClearAll(ctx))
	require.NoError(t, d.ClearAll(ctx))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"other": []byte("keep")}, all)
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "alice@bank.test",
		"exp":   exp.Unix(),
		"roles": []string{"ROLE_CUSTOMER"},
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	c, err := Inspect("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "alice@bank.test", c.Subject)
	assert.Equal(t, []string{"ROLE_CUSTOMER"}, c.Roles)
	require.NotNil(t, c.ExpiresAt)
	assert.True(t, exp.Equal(*c.ExpiresAt))
	assert.False(t, c.Expired(exp.Add(-time.Second)))
	assert.True(t, c.Expired(exp))

	single, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"roles": "ADMIN"}).SignedString([]byte("k"))
	require.NoError(t, err)
	c, err = Inspect(single)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, c.Roles)
	assert.Nil(t, c.ExpiresAt)
	assert.False(t, c.Expired(time.Now()))

	_, err = Inspect("opaque-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = Inspect("a.b.c")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
