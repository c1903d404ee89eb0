package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/client"
	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/client/tokenstore"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedValidator returns verdicts in order; the last one repeats.
type scriptedValidator struct {
	mu       sync.Mutex
	verdicts []Verdict
	calls    int
	block    chan struct{}
}

func (s *scriptedValidator) Validate(ctx context.Context, _ string) Verdict {
	s.mu.Lock()
	i := s.calls
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil && i == 0 {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	if i >= len(s.verdicts) {
		i = len(s.verdicts) - 1
	}
	return s.verdicts[i]
}

func (s *scriptedValidator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeLogout struct {
	called int
	err    error
}

func (f *fakeLogout) Logout(context.Context) error {
	f.called++
	return f.err
}

type fakeRefresher struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
}

func (f *fakeRefresher) RefreshToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.token, f.err
}

func (f *fakeRefresher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@bank.test",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

var alice = &models.User{ID: 1, Email: "alice@bank.test", FirstName: "Alice", Role: models.RoleCustomer}

func newStore(t *testing.T) (*tokenstore.Store, *storage.MemoryStore) {
	t.Helper()
	backend := storage.NewMemoryStore()
	return tokenstore.New(backend), backend
}

func seed(t *testing.T, ts *tokenstore.Store) {
	t.Helper()
	require.NoError(t, ts.Save(context.Background(), "tok", alice))
}

func TestCheckAuthStatus_Valid(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}
	m := NewManager(ts, v)

	m.CheckAuthStatus(context.Background())

	st := m.State()
	assert.True(t, st.IsAuthenticated())
	assert.Equal(t, alice, st.User)
	assert.False(t, st.Loading)
}

func TestCheckAuthStatus_ValidRefreshesUser(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	fresh := &models.User{ID: 1, Email: "alice@bank.test", FirstName: "Alicia", Role: models.RoleCustomer}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid, User: fresh}}})

	m.CheckAuthStatus(context.Background())

	assert.Equal(t, "Alicia", m.State().User.FirstName)
	snap, err := ts.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alicia", snap.User.FirstName)
}

func TestCheckAuthStatus_RejectedClearsStore(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Rejected}}})

	m.CheckAuthStatus(context.Background())

	assert.False(t, m.State().IsAuthenticated())
	assert.Equal(t, Anonymous, m.State().Status)
	snap, err := ts.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Complete())
	assert.Empty(t, snap.Token)
}

func TestCheckAuthStatus_ValidatorAsymmetry(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}, {Outcome: Indeterminate}, {Outcome: Rejected}, {Outcome: Indeterminate}}}
	m := NewManager(ts, v)
	ctx := context.Background()

	m.CheckAuthStatus(ctx)
	require.True(t, m.State().IsAuthenticated())

	// network failure keeps the session and the storage
	m.CheckAuthStatus(ctx)
	assert.True(t, m.State().IsAuthenticated())
	snap, _ := ts.Load(ctx)
	assert.True(t, snap.Complete())

	// rejection always ends it
	m.CheckAuthStatus(ctx)
	assert.False(t, m.State().IsAuthenticated())

	// nothing stored any more, so the validator is not consulted again
	m.CheckAuthStatus(ctx)
	assert.False(t, m.State().IsAuthenticated())
	assert.Equal(t, 3, v.Calls())
}

func TestCheckAuthStatus_IndeterminateKeepsAnonymous(t *testing.T) {
	ts, _ := newStore(t)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Indeterminate}}}
	m := NewManager(ts, v)
	ctx := context.Background()

	m.CheckAuthStatus(ctx)
	require.Equal(t, Anonymous, m.State().Status)

	// another instance signs in while the backend is unreachable
	seed(t, ts)
	m.CheckAuthStatus(ctx)

	assert.Equal(t, 1, v.Calls())
	assert.Equal(t, Anonymous, m.State().Status)
	assert.False(t, m.State().IsAuthenticated())
	assert.False(t, m.State().Loading)
	snap, _ := ts.Load(ctx)
	assert.True(t, snap.Complete(), "storage is left for a later check")
}

func TestCheckAuthStatus_IndeterminateOnFirstResolutionTrustsStorage(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Indeterminate}}})

	m.CheckAuthStatus(context.Background())

	assert.True(t, m.State().IsAuthenticated())
	assert.Equal(t, alice, m.State().User)
}

func TestCheckAuthStatus_MissingPartsSkipValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		ts, _ := newStore(t)
		v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}
		m := NewManager(ts, v)
		m.CheckAuthStatus(ctx)
		assert.Equal(t, Anonymous, m.State().Status)
		assert.Zero(t, v.Calls())
	})

	t.Run("token without user is cleared", func(t *testing.T) {
		ts, backend := newStore(t)
		require.NoError(t, backend.Set(ctx, common.TokenKey, []byte("orphan")))
		v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}
		m := NewManager(ts, v)
		m.CheckAuthStatus(ctx)
		assert.Equal(t, Anonymous, m.State().Status)
		assert.Zero(t, v.Calls())
		raw, _ := backend.Get(ctx, common.TokenKey)
		assert.Nil(t, raw)
	})
}

func TestCheckAuthStatus_CorruptUserFailsClosed(t *testing.T) {
	ctx := context.Background()
	ts, backend := newStore(t)
	require.NoError(t, backend.Set(ctx, common.TokenKey, []byte("tok")))
	require.NoError(t, backend.Set(ctx, common.UserKey, []byte("{not json")))
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}
	m := NewManager(ts, v)

	m.CheckAuthStatus(ctx)

	assert.Equal(t, Anonymous, m.State().Status)
	assert.Zero(t, v.Calls())
	raw, _ := backend.Get(ctx, common.UserKey)
	assert.Nil(t, raw)
}

func TestCheckAuthStatus_LastStartedWins(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{
		verdicts: []Verdict{{Outcome: Rejected}, {Outcome: Valid}},
		block:    make(chan struct{}),
	}
	m := NewManager(ts, v)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.CheckAuthStatus(ctx) // first call blocks, then returns Rejected
	}()
	require.Eventually(t, func() bool { return v.Calls() == 1 }, time.Second, 5*time.Millisecond)

	m.CheckAuthStatus(ctx) // second call returns Valid immediately
	require.True(t, m.State().IsAuthenticated())

	close(v.block)
	<-done

	assert.True(t, m.State().IsAuthenticated(), "stale rejection must be discarded")
	snap, _ := ts.Load(ctx)
	assert.True(t, snap.Complete(), "stale rejection must not clear storage")
}

func TestCheckAuthStatus_CancelledResultDiscarded(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Rejected}}, block: make(chan struct{})}
	m := NewManager(ts, v)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.CheckAuthStatus(ctx)
	}()
	require.Eventually(t, func() bool { return v.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	snap, _ := ts.Load(context.Background())
	assert.True(t, snap.Complete())
	assert.NotEqual(t, Anonymous, m.State().Status)
}

func TestStart_CancelledCheckLeavesLoading(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Rejected}}, block: make(chan struct{})}
	m := NewManager(ts, v)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.Eventually(t, func() bool { return v.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	m.Wait()

	st := m.State()
	assert.Equal(t, Loading, st.Status)
	assert.True(t, st.Loading, "an abandoned check does not end the loading phase")
	select {
	case <-m.Ready():
		t.Fatal("ready must not close without a resolution")
	default:
	}
}

func TestLoginLogout(t *testing.T) {
	ts, _ := newStore(t)
	backend := &fakeLogout{err: errors.New("offline")}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithBackendLogout(backend))
	ctx := context.Background()

	var seen []State
	unsubscribe := m.Subscribe(func(s State) { seen = append(seen, s) })
	defer unsubscribe()

	require.NoError(t, m.Login(ctx, "tok", alice))
	assert.True(t, m.State().IsAuthenticated())
	snap, _ := ts.Load(ctx)
	assert.Equal(t, "tok", snap.Token)
	assert.Equal(t, alice, snap.User)

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, 1, backend.called)
	assert.False(t, m.State().IsAuthenticated())
	snap, _ = ts.Load(ctx)
	assert.False(t, snap.Complete())

	require.Len(t, seen, 2)
	assert.Equal(t, Authenticated, seen[0].Status)
	assert.Equal(t, Anonymous, seen[1].Status)
}

func TestLogin_RequiresTokenAndUser(t *testing.T) {
	ts, _ := newStore(t)
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}})
	assert.Error(t, m.Login(context.Background(), "", alice))
	assert.Error(t, m.Login(context.Background(), "tok", nil))
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	ts, _ := newStore(t)
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}})
	calls := 0
	unsubscribe := m.Subscribe(func(State) { calls++ })
	unsubscribe()
	unsubscribe()
	require.NoError(t, m.Login(context.Background(), "tok", alice))
	assert.Zero(t, calls)
}

func TestStart_ResolvesAndReactsToEvents(t *testing.T) {
	ts, backend := newStore(t)
	seed(t, ts)
	bus := events.NewBus()
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}
	m := NewManager(ts, v, WithBus(bus))

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	assert.True(t, m.State().Loading || m.State().IsAuthenticated())

	select {
	case <-m.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("manager never became ready")
	}
	require.True(t, m.State().IsAuthenticated())
	assert.False(t, m.State().Loading)

	// another process logged out
	require.NoError(t, backend.DeleteMany(ctx, common.TokenKey, common.UserKey))
	bus.Publish(events.Event{Kind: events.StorageChanged, Keys: []string{common.TokenKey}})
	require.Eventually(t, func() bool { return m.State().Status == Anonymous }, 2*time.Second, 10*time.Millisecond)

	// unrelated keys are ignored
	calls := v.Calls()
	bus.Publish(events.Event{Kind: events.StorageChanged, Keys: []string{common.PendingRedirectKey}})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, v.Calls())

	// another process logged in, then an in-process auth-changed signal
	seed(t, ts)
	bus.Publish(events.Event{Kind: events.AuthChanged})
	require.Eventually(t, func() bool { return m.State().IsAuthenticated() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	m.Wait()
}

func TestStart_RevalidatesPeriodically(t *testing.T) {
	ts, _ := newStore(t)
	seed(t, ts)
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}, {Outcome: Rejected}}}
	m := NewManager(ts, v, WithRevalidateInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		m.Wait()
	}()
	m.Start(ctx)

	require.Eventually(t, func() bool { return m.State().Status == Anonymous }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, v.Calls(), 2)
}

func TestStart_EventMarksLoadingUntilResolved(t *testing.T) {
	ts, _ := newStore(t)
	bus := events.NewBus()
	v := &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}, block: make(chan struct{})}
	m := NewManager(ts, v, WithBus(bus))

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		m.Wait()
	}()
	m.Start(ctx)
	<-m.Ready()
	require.Equal(t, Anonymous, m.State().Status)

	seed(t, ts)
	bus.Publish(events.Event{Kind: events.AuthChanged})
	assert.True(t, m.State().Loading, "loading is set before Publish returns")

	close(v.block)
	require.Eventually(t, func() bool {
		st := m.State()
		return st.IsAuthenticated() && !st.Loading
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshToken_ReplacesTokenKeepsUser(t *testing.T) {
	ts, _ := newStore(t)
	r := &fakeRefresher{token: "tok-2"}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, time.Minute))
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, "tok", alice))

	require.NoError(t, m.RefreshToken(ctx))

	snap, err := ts.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", snap.Token)
	assert.Equal(t, alice, snap.User)
	assert.True(t, m.State().IsAuthenticated())
	assert.False(t, m.State().Loading)
}

func TestRefreshToken_RejectionEndsSession(t *testing.T) {
	ts, _ := newStore(t)
	r := &fakeRefresher{err: &client.APIError{Status: 401, Message: "expired"}}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, time.Minute))
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, "tok", alice))

	err := m.RefreshToken(ctx)

	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, Anonymous, m.State().Status)
	snap, _ := ts.Load(ctx)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
}

func TestRefreshToken_NetworkFailureKeepsSession(t *testing.T) {
	ts, _ := newStore(t)
	r := &fakeRefresher{err: &client.APIError{Status: 0, Message: client.NetworkErrorMessage}}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, time.Minute))
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, "tok", alice))

	err := m.RefreshToken(ctx)

	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.True(t, m.State().IsAuthenticated())
	snap, _ := ts.Load(ctx)
	assert.Equal(t, "tok", snap.Token)
}

func TestRefreshToken_Preconditions(t *testing.T) {
	ctx := context.Background()

	ts, _ := newStore(t)
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}})
	assert.ErrorIs(t, m.RefreshToken(ctx), ErrRefreshDisabled)

	r := &fakeRefresher{token: "tok-2"}
	m = NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, time.Minute))
	assert.ErrorIs(t, m.RefreshToken(ctx), ErrNotAuthenticated)
	assert.Zero(t, r.Calls())
}

func TestStart_RefreshesTokenNearExpiry(t *testing.T) {
	ts, _ := newStore(t)
	exp := time.Now().Add(time.Hour)
	require.NoError(t, ts.Save(context.Background(), signedToken(t, exp), alice))

	// "tok-2" is opaque, so it is never considered for another refresh
	r := &fakeRefresher{token: "tok-2"}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, 40*time.Millisecond))
	m.nowFn = func() time.Time { return exp.Add(-20 * time.Millisecond) }

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		m.Wait()
	}()
	m.Start(ctx)

	require.Eventually(t, func() bool {
		snap, err := ts.Load(context.Background())
		return err == nil && snap.Token == "tok-2"
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, r.Calls())
	assert.True(t, m.State().IsAuthenticated())
}

func TestStart_LeavesFreshTokenAlone(t *testing.T) {
	ts, _ := newStore(t)
	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, ts.Save(context.Background(), token, alice))

	r := &fakeRefresher{token: "tok-2"}
	m := NewManager(ts, &scriptedValidator{verdicts: []Verdict{{Outcome: Valid}}}, WithTokenRefresh(r, 40*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	<-m.Ready()
	time.Sleep(150 * time.Millisecond)
	cancel()
	m.Wait()

	assert.Zero(t, r.Calls())
	snap, _ := ts.Load(context.Background())
	assert.Equal(t, token, snap.Token)
}
