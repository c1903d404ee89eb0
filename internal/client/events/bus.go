// Package events is the in-process broadcast used to tell session
// consumers that authentication state or the underlying storage changed.
package events

import (
	"slices"
	"sync"
)

type Kind int

const (
	// AuthChanged is raised by code that altered the session out of band,
	// for example the HTTP interceptor after a forced logout.
	AuthChanged Kind = iota + 1
	// StorageChanged is raised when another process wrote shared storage.
	StorageChanged
)

func (k Kind) String() string {
	switch k {
	case AuthChanged:
		return "auth-changed"
	case StorageChanged:
		return "storage-changed"
	default:
		return "unknown"
	}
}

// Event describes one notification. Keys lists the storage keys involved
// when known; an empty Keys means "anything may have changed".
type Event struct {
	Kind   Kind
	Keys   []string
	Origin string
}

// Touches reports whether e may concern any of keys.
func (e Event) Touches(keys ...string) bool {
	if len(e.Keys) == 0 {
		return true
	}
	for _, k := range keys {
		if slices.Contains(e.Keys, k) {
			return true
		}
	}
	return false
}

// Bus fans events out to subscribers. Handlers run synchronously on the
// publishing goroutine and must not block.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]func(Event)
	next uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
