package nav

import (
	"context"

	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/common"
)

// PendingRedirects remembers where an unauthenticated visitor was headed.
// It lives in session-scoped storage and is consumed by the next
// successful login.
type PendingRedirects struct {
	store *storage.MemoryStore
}

func NewPendingRedirects(store *storage.MemoryStore) *PendingRedirects {
	return &PendingRedirects{store: store}
}

func (p *PendingRedirects) Record(ctx context.Context, location string) error {
	return p.store.Set(ctx, common.PendingRedirectKey, []byte(location))
}

// Take returns the pending location and deletes it in one step. Only one
// caller ever receives a given value.
func (p *PendingRedirects) Take(ctx context.Context) (string, bool) {
	v, ok := p.store.Take(ctx, common.PendingRedirectKey)
	if !ok || len(v) == 0 {
		return "", false
	}
	return string(v), true
}

// Peek reads the pending location without consuming it.
func (p *PendingRedirects) Peek(ctx context.Context) (string, bool) {
	v, err := p.store.Get(ctx, common.PendingRedirectKey)
	if err != nil || len(v) == 0 {
		return "", false
	}
	return string(v), true
}
