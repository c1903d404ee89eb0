package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zalando/go-keyring"
)

// indexKey names the keyring item that records which keys exist, since the
// OS keyring offers no enumeration.
const indexKey = "__bankfront_index"

// KeyringStore keeps values in the OS credential store (macOS Keychain,
// Secret Service, Windows Credential Manager) under one service name.
type KeyringStore struct {
	service string
	mu      sync.Mutex
}

func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Get(_ context.Context, key string) ([]byte, error) {
	secret, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get storage[%s]: %w", key, err)
	}
	value, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode storage[%s]: %w", key, err)
	}
	return value, nil
}

func (k *KeyringStore) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(k.service, key, base64.StdEncoding.EncodeToString(value)); err != nil {
		return fmt.Errorf("failed to set storage[%s]: %w", key, err)
	}

	keys, err := k.readIndex()
	if err != nil {
		return err
	}
	if !slices.Contains(keys, key) {
		return k.writeIndex(append(keys, key))
	}
	return nil
}

func (k *KeyringStore) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deleteLocked(key)
}

func (k *KeyringStore) List(ctx context.Context) (map[string][]byte, error) {
	k.mu.Lock()
	keys, err := k.readIndex()
	k.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		v, err := k.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			result[key] = v
		}
	}
	return result, nil
}

func (k *KeyringStore) Clear(_ context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	keys, err := k.readIndex()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := k.deleteLocked(key); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
	}
	return nil
}

func (k *KeyringStore) deleteLocked(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete storage[%s]: %w", key, err)
	}

	keys, err := k.readIndex()
	if err != nil {
		return err
	}
	if i := slices.Index(keys, key); i >= 0 {
		return k.writeIndex(slices.Delete(keys, i, i+1))
	}
	return nil
}

func (k *KeyringStore) readIndex() ([]string, error) {
	raw, err := keyring.Get(k.service, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage index: %w", err)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("failed to decode storage index: %w", err)
	}
	return keys, nil
}

func (k *KeyringStore) writeIndex(keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := keyring.Set(k.service, indexKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write storage index: %w", err)
	}
	return nil
}
