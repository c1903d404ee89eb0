// Package nav provides in-process navigation for the shell: a history stack,
// the pending post-login redirect, route guards and a router that applies
// them.
package nav

import (
	"net/url"
	"strings"
	"sync"
)

type navigateOptions struct {
	replace bool
}

type NavigateOption func(*navigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) { o.replace = true }
}

// Navigator is a browser-like history of locations. A location is a path
// with an optional query string.
type Navigator struct {
	mu      sync.Mutex
	history []string
	subs    []func(string)
}

func NewNavigator(start string) *Navigator {
	return &Navigator{history: []string{start}}
}

func (n *Navigator) Navigate(location string, opts ...NavigateOption) {
	var o navigateOptions
	for _, fn := range opts {
		fn(&o)
	}

	n.mu.Lock()
	if o.replace {
		n.history[len(n.history)-1] = location
	} else {
		n.history = append(n.history, location)
	}
	subs := append([]func(string){}, n.subs...)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(location)
	}
}

// OnNavigate registers fn for every navigation.
func (n *Navigator) OnNavigate(fn func(location string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Back pops the current entry. It reports false at the first entry.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) < 2 {
		return false
	}
	n.history = n.history[:len(n.history)-1]
	return true
}

// Current returns the full current location.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[len(n.history)-1]
}

// Path returns the current location without its query.
func (n *Navigator) Path() string {
	return PathOf(n.Current())
}

// Query returns the parsed query of the current location.
func (n *Navigator) Query() url.Values {
	_, q, _ := strings.Cut(n.Current(), "?")
	v, _ := url.ParseQuery(q)
	return v
}

func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.history)
}

func PathOf(location string) string {
	p, _, _ := strings.Cut(location, "?")
	return p
}
