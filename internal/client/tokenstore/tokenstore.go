// Package tokenstore keeps the bearer token and the current user record in
// persistent storage under two well-known keys. It has no logic beyond
// get/set/clear and never touches the network.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/common"
)

// Snapshot is what Load found in storage.
//
// User is nil both when no user payload exists and when the payload failed
// to parse; UserErr tells the two apart. Callers must treat a non-nil
// UserErr as "no session".
type Snapshot struct {
	Token   string
	User    *models.User
	UserErr error
}

// Complete reports whether both a token and a parseable user are present.
func (s Snapshot) Complete() bool {
	return s.Token != "" && s.User != nil && s.UserErr == nil
}

type Store struct {
	backend  storage.Store
	tokenKey string
	userKey  string
}

// New wraps backend using the namespaced keys.
func New(backend storage.Store) *Store {
	return &Store{backend: backend, tokenKey: common.TokenKey, userKey: common.UserKey}
}

// Save writes token and user. The token shape is not checked; a nil user is
// rejected because a token is never stored without its user.
func (s *Store) Save(ctx context.Context, token string, user *models.User) error {
	if user == nil {
		return errors.New("tokenstore: user is required")
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("tokenstore: encode user: %w", err)
	}
	return storage.SetMany(ctx, s.backend, map[string][]byte{
		s.tokenKey: []byte(token),
		s.userKey:  payload,
	})
}

// Load reads both keys. The returned error only reports storage failures;
// a corrupt user payload is reported through Snapshot.UserErr.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rawToken, err := s.backend.Get(ctx, s.tokenKey)
	if err != nil {
		return snap, err
	}
	snap.Token = unwrapToken(string(rawToken))

	rawUser, err := s.backend.Get(ctx, s.userKey)
	if err != nil {
		return snap, err
	}
	if len(rawUser) == 0 {
		return snap, nil
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		snap.UserErr = fmt.Errorf("%w: %v", common.ErrCorruptSession, err)
		return snap, nil
	}
	snap.User = &user
	return snap, nil
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	raw, err := s.backend.Get(ctx, s.tokenKey)
	if err != nil {
		return "", err
	}
	return unwrapToken(string(raw)), nil
}

// Clear removes both keys unconditionally. It is idempotent.
func (s *Store) Clear(ctx context.Context) error {
	return storage.DeleteMany(ctx, s.backend, s.tokenKey, s.userKey)
}

// Keys returns the token and user keys, in that order.
func (s *Store) Keys() (string, string) {
	return s.tokenKey, s.userKey
}

// unwrapToken accepts the {"token":"..."} form some older builds wrote.
func unwrapToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return raw
	}
	var wrapped struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil || wrapped.Token == "" {
		return raw
	}
	return wrapped.Token
}
