package nav

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/client/session"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession struct {
	mu sync.Mutex
	st session.State
}

func (s *staticSession) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *staticSession) set(st session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
}

var (
	customer = &models.User{ID: 1, Email: "c@bank.test", Role: models.RoleCustomer}
	admin    = &models.User{ID: 2, Email: "a@bank.test", Role: models.RoleAdmin}
	paths    = Paths{Home: "/home", Login: "/login", Register: "/register"}
)

func authed(u *models.User) session.State {
	return session.State{Status: session.Authenticated, User: u}
}

var anonymous = session.State{Status: session.Anonymous}

type fixture struct {
	sess    *staticSession
	nav     *Navigator
	pending *PendingRedirects
	guards  *Guards
}

func newFixture(start string, st session.State) *fixture {
	f := &fixture{
		sess:    &staticSession{st: st},
		nav:     NewNavigator(start),
		pending: NewPendingRedirects(storage.NewMemoryStore()),
	}
	f.guards = NewGuards(f.sess, f.nav, f.pending, paths, logging.Nop())
	return f
}

func TestNavigator(t *testing.T) {
	n := NewNavigator("/home")
	var seen []string
	n.OnNavigate(func(l string) { seen = append(seen, l) })

	n.Navigate("/accounts")
	n.Navigate("/login?session_expired=true", WithReplace())
	assert.Equal(t, 2, n.Depth())
	assert.Equal(t, "/login", n.Path())
	assert.Equal(t, "true", n.Query().Get("session_expired"))

	assert.True(t, n.Back())
	assert.Equal(t, "/home", n.Current())
	assert.False(t, n.Back())
	assert.Equal(t, []string{"/accounts", "/login?session_expired=true"}, seen)
}

func TestRequireAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("loading waits", func(t *testing.T) {
		f := newFixture("/accounts", session.State{Status: session.Loading, Loading: true})
		assert.Equal(t, Wait, f.guards.RequireAuth(ctx).Action)
		assert.Equal(t, "/accounts", f.nav.Current())
		_, ok := f.pending.Peek(ctx)
		assert.False(t, ok)
	})

	t.Run("authenticated renders", func(t *testing.T) {
		f := newFixture("/accounts", authed(customer))
		assert.Equal(t, Render, f.guards.RequireAuth(ctx).Action)
	})

	t.Run("anonymous redirects and records once", func(t *testing.T) {
		f := newFixture("/home", anonymous)
		f.nav.Navigate("/accounts")

		d := f.guards.RequireAuth(ctx)
		assert.Equal(t, Decision{Action: Redirect, Target: "/login"}, d)
		assert.Equal(t, "/login", f.nav.Current())
		assert.Equal(t, 2, f.nav.Depth(), "history entry replaced")

		got, ok := f.pending.Take(ctx)
		require.True(t, ok)
		assert.Equal(t, "/accounts", got)
		_, ok = f.pending.Take(ctx)
		assert.False(t, ok)
	})
}

func TestRequireAnonymous(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous renders", func(t *testing.T) {
		f := newFixture("/login", anonymous)
		assert.Equal(t, Render, f.guards.RequireAnonymous(ctx).Action)
	})

	t.Run("loading waits", func(t *testing.T) {
		f := newFixture("/login", session.State{Status: session.Loading, Loading: true})
		assert.Equal(t, Wait, f.guards.RequireAnonymous(ctx).Action)
	})

	t.Run("authenticated goes to pending redirect and clears it", func(t *testing.T) {
		f := newFixture("/login", authed(customer))
		require.NoError(t, f.pending.Record(ctx, "/transfer"))

		d := f.guards.RequireAnonymous(ctx)
		assert.Equal(t, Decision{Action: Redirect, Target: "/transfer"}, d)
		assert.Equal(t, "/transfer", f.nav.Current())
		_, ok := f.pending.Take(ctx)
		assert.False(t, ok)
	})

	t.Run("authenticated without pending goes home", func(t *testing.T) {
		f := newFixture("/register", authed(customer))
		d := f.guards.RequireAnonymous(ctx)
		assert.Equal(t, "/home", d.Target)
		assert.Equal(t, 1, f.nav.Depth())
	})

	t.Run("pending pointing at login is ignored", func(t *testing.T) {
		f := newFixture("/login", authed(customer))
		require.NoError(t, f.pending.Record(ctx, "/login?session_expired=true"))
		assert.Equal(t, "/home", f.guards.RequireAnonymous(ctx).Target)
	})
}

func TestRequireAnonymous_PendingHasSingleConsumer(t *testing.T) {
	ctx := context.Background()
	pending := NewPendingRedirects(storage.NewMemoryStore())
	require.NoError(t, pending.Record(ctx, "/loans"))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		targets []string
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := NewNavigator("/login")
			g := NewGuards(&staticSession{st: authed(customer)}, n, pending, paths, logging.Nop())
			d := g.RequireAnonymous(ctx)
			mu.Lock()
			targets = append(targets, d.Target)
			mu.Unlock()
		}()
	}
	wg.Wait()

	loans := 0
	for _, tgt := range targets {
		if tgt == "/loans" {
			loans++
		}
	}
	assert.Equal(t, 1, loans)
}

func TestRequireRole(t *testing.T) {
	ctx := context.Background()

	f := newFixture("/admin", authed(customer))
	assert.Equal(t, Forbidden, f.guards.RequireRole(ctx, models.RoleAdmin).Action)
	assert.Equal(t, "/admin", f.nav.Current(), "no redirect for missing role")

	f = newFixture("/admin", authed(admin))
	assert.Equal(t, Render, f.guards.RequireRole(ctx, models.RoleAdmin).Action)

	f = newFixture("/admin", anonymous)
	assert.Equal(t, Redirect, f.guards.RequireRole(ctx, models.RoleAdmin).Action)
}

func TestSessionExpiredHandler(t *testing.T) {
	ctx := context.Background()
	n := NewNavigator("/accounts?tab=savings")
	pending := NewPendingRedirects(storage.NewMemoryStore())
	h := SessionExpiredHandler(n, pending, "/login")

	h(ctx)
	assert.Equal(t, "/login?session_expired=true", n.Current())
	assert.Equal(t, 1, n.Depth())
	target, ok := pending.Peek(ctx)
	require.True(t, ok)
	assert.Equal(t, "/accounts?tab=savings", target)

	n.Navigate("/login")
	require.NoError(t, pending.Record(ctx, "/loans"))
	h(ctx)
	assert.Equal(t, "/login", n.Current(), "already on login")
	target, _ = pending.Peek(ctx)
	assert.Equal(t, "/loans", target, "login itself is never recorded")

	assert.NotPanics(t, func() { SessionExpiredHandler(NewNavigator("/home"), nil, "/login")(ctx) })
}

func screen(text string) Screen {
	return func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	}
}

func TestRouter_Render(t *testing.T) {
	ctx := context.Background()
	f := newFixture("/accounts", anonymous)
	r := NewRouter(f.guards, f.nav)
	r.Handle(Route{Path: "/login", Access: AnonymousOnly, Screen: screen("login")})
	r.Handle(Route{Path: "/home", Access: AuthOnly, Screen: screen("home")})
	r.Handle(Route{Path: "/accounts", Access: AuthOnly, Screen: screen("accounts")})
	r.Handle(Route{Path: "/admin", Access: AdminOnly, Screen: screen("admin")})
	r.Handle(Route{Path: "/calc", Access: Public, Screen: screen("calc")})

	var buf bytes.Buffer
	require.NoError(t, r.Render(ctx, &buf))
	assert.Equal(t, "login", buf.String())

	// signing in bounces back to where the user was going
	f.sess.set(authed(customer))
	buf.Reset()
	require.NoError(t, r.Render(ctx, &buf))
	assert.Equal(t, "accounts", buf.String())

	f.nav.Navigate("/admin")
	buf.Reset()
	require.NoError(t, r.Render(ctx, &buf))
	assert.Contains(t, buf.String(), "Forbidden")

	f.nav.Navigate("/nowhere")
	assert.ErrorIs(t, r.Render(ctx, &buf), ErrNoRoute)

	f.sess.set(session.State{Status: session.Loading, Loading: true})
	f.nav.Navigate("/home")
	assert.ErrorIs(t, r.Render(ctx, &buf), ErrStillLoading)

	assert.Len(t, r.Routes(), 5)
	assert.Equal(t, "/accounts", r.Routes()[0].Path)
}
