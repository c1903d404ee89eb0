// Package diag inspects and repairs the session keys in client storage:
// status reports, detection of tokens left under the legacy keys, migration
// from those keys, and a full wipe.
package diag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/logging"
)

const maskPrefix = 10

// MaskToken keeps the first ten characters of token. Empty stays empty.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	r := []rune(token)
	if len(r) <= maskPrefix {
		return string(r) + "..."
	}
	return string(r[:maskPrefix]) + "..."
}

type Diagnostics struct {
	store  storage.Store
	logger logging.Logger
}

func New(store storage.Store, logger logging.Logger) *Diagnostics {
	return &Diagnostics{store: store, logger: logger}
}

type Status struct {
	HasToken    bool
	MaskedToken string
	HasUser     bool
	User        *models.User
	// UserErr is set when a user payload exists but does not parse.
	UserErr error
}

// CheckStatus reports what the namespaced keys hold.
func (d *Diagnostics) CheckStatus(ctx context.Context) (Status, error) {
	var st Status

	token, err := d.store.Get(ctx, common.TokenKey)
	if err != nil {
		return st, err
	}
	st.HasToken = len(token) > 0
	st.MaskedToken = MaskToken(string(token))

	raw, err := d.store.Get(ctx, common.UserKey)
	if err != nil {
		return st, err
	}
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			st.UserErr = fmt.Errorf("%w: %v", common.ErrCorruptSession, err)
		} else {
			st.HasUser = true
			st.User = &u
		}
	}
	return st, nil
}

type StorageReport struct {
	TokenKey          string
	HasToken          bool
	HasLegacyToken    bool
	MaskedToken       string
	MaskedLegacyToken string
	// Mismatch is true when a legacy token exists and either no namespaced
	// token exists or the two differ.
	Mismatch bool
}

func (d *Diagnostics) CheckTokenStorage(ctx context.Context) (StorageReport, error) {
	current, err := d.store.Get(ctx, common.TokenKey)
	if err != nil {
		return StorageReport{}, err
	}
	legacy, err := d.store.Get(ctx, common.LegacyTokenKey)
	if err != nil {
		return StorageReport{}, err
	}

	r := StorageReport{
		TokenKey:          common.TokenKey,
		HasToken:          len(current) > 0,
		HasLegacyToken:    len(legacy) > 0,
		MaskedToken:       MaskToken(string(current)),
		MaskedLegacyToken: MaskToken(string(legacy)),
	}
	r.Mismatch = (!r.HasToken && r.HasLegacyToken) ||
		(r.HasToken && r.HasLegacyToken && string(current) != string(legacy))
	return r, nil
}

type MigrationResult struct {
	Success       bool
	Message       string
	TokenMigrated bool
	UserMigrated  bool
}

// MigrateLegacy copies values from the legacy keys to the namespaced ones.
// Legacy entries are left in place.
func (d *Diagnostics) MigrateLegacy(ctx context.Context) (MigrationResult, error) {
	oldToken, err := d.store.Get(ctx, common.LegacyTokenKey)
	if err != nil {
		return MigrationResult{}, err
	}
	oldUser, err := d.store.Get(ctx, common.LegacyUserKey)
	if err != nil {
		return MigrationResult{}, err
	}

	if len(oldToken) == 0 && len(oldUser) == 0 {
		return MigrationResult{Message: "No tokens found with old keys"}, nil
	}

	values := map[string][]byte{}
	if len(oldToken) > 0 {
		values[common.TokenKey] = oldToken
	}
	if len(oldUser) > 0 {
		values[common.UserKey] = oldUser
	}
	if err := storage.SetMany(ctx, d.store, values); err != nil {
		return MigrationResult{}, err
	}

	d.logger.Info(ctx, "migrated legacy session keys", "token", len(oldToken) > 0, "user", len(oldUser) > 0)
	return MigrationResult{
		Success:       true,
		Message:       "Token migration successful",
		TokenMigrated: len(oldToken) > 0,
		UserMigrated:  len(oldUser) > 0,
	}, nil
}

// ClearAll removes the namespaced and the legacy key pairs.
func (d *Diagnostics) ClearAll(ctx context.Context) error {
	return storage.DeleteMany(ctx, d.store,
		common.TokenKey, common.UserKey, common.LegacyTokenKey, common.LegacyUserKey)
}
