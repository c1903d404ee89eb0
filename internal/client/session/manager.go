package session

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/client"
	"github.com/dmitrijs2005/bankfront/internal/client/diag"
	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/metrics"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/tokenstore"
	"github.com/dmitrijs2005/bankfront/internal/logging"
)

type Store interface {
	Load(ctx context.Context) (tokenstore.Snapshot, error)
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
	Keys() (string, string)
}

type TokenValidator interface {
	Validate(ctx context.Context, token string) Verdict
}

// BackendLogout ends the session server-side.
type BackendLogout interface {
	Logout(ctx context.Context) error
}

// TokenRefresher exchanges the current token for a new one.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

var (
	ErrNotAuthenticated = errors.New("session: not signed in")
	ErrRefreshDisabled  = errors.New("session: token refresh is not configured")
)

// minRefreshTick bounds how often the expiry of the stored token is looked at.
const minRefreshTick = 10 * time.Millisecond

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithBus(b *events.Bus) Option {
	return func(m *Manager) { m.bus = b }
}

func WithBackendLogout(b BackendLogout) Option {
	return func(m *Manager) { m.backend = b }
}

// WithRevalidateInterval re-checks an authenticated session periodically.
// Zero disables it.
func WithRevalidateInterval(d time.Duration) Option {
	return func(m *Manager) { m.revalidate = d }
}

// WithTokenRefresh refreshes the stored token once its exp claim is closer
// than window. Tokens without a readable exp claim are left alone.
func WithTokenRefresh(r TokenRefresher, window time.Duration) Option {
	return func(m *Manager) {
		m.refresher = r
		m.refreshWindow = window
	}
}

type Manager struct {
	store         Store
	validator     TokenValidator
	bus           *events.Bus
	backend       BackendLogout
	refresher     TokenRefresher
	logger        logging.Logger
	metrics       *metrics.Metrics
	revalidate    time.Duration
	refreshWindow time.Duration
	nowFn         func() time.Time

	gen atomic.Uint64

	mu      sync.Mutex
	state   State
	subs    map[uint64]func(State)
	nextSub uint64

	ready     chan struct{}
	readyOnce sync.Once

	runCtx context.Context
	wg     sync.WaitGroup
}

func NewManager(store Store, validator TokenValidator, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		validator: validator,
		logger:    logging.Nop(),
		subs:      make(map[uint64]func(State)),
		ready:     make(chan struct{}),
		runCtx:    context.Background(),
		nowFn:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready is closed once the first resolution after Start has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn runs on the goroutine that changed the state.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Start moves the manager to LOADING, resolves the session in the background
// and keeps it in sync with bus events, periodic revalidation and token
// refresh until ctx is done. Results of checks still running when ctx ends are discarded.
func (m *Manager) Start(ctx context.Context) {
	m.runCtx = ctx
	m.setState(func(s *State) {
		s.Status = Loading
		s.Loading = true
		s.User = nil
	})

	if m.bus != nil {
		unsubscribe := m.bus.Subscribe(m.onEvent)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			<-ctx.Done()
			unsubscribe()
		}()
	}

	m.spawnCheck()

	if m.revalidate > 0 || m.refreshEnabled() {
		m.wg.Add(1)
		go m.maintainLoop(ctx)
	}
}

func (m *Manager) refreshEnabled() bool {
	return m.refresher != nil && m.refreshWindow > 0
}

// Wait blocks until every goroutine started by Start has returned. Call it
// after cancelling the Start context.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) onEvent(e events.Event) {
	switch e.Kind {
	case events.AuthChanged:
	case events.StorageChanged:
		tokenKey, userKey := m.store.Keys()
		if !e.Touches(tokenKey, userKey) {
			return
		}
	default:
		return
	}
	m.spawnCheck()
}

// spawnCheck marks the session loading before returning, so guards wait
// for the background check instead of acting on the previous state.
func (m *Manager) spawnCheck() {
	if m.runCtx.Err() != nil {
		return
	}
	m.setState(func(s *State) { s.Loading = true })
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.CheckAuthStatus(m.runCtx)
	}()
}

func (m *Manager) maintainLoop(ctx context.Context) {
	defer m.wg.Done()

	var revalidateC, refreshC <-chan time.Time
	if m.revalidate > 0 {
		t := time.NewTicker(m.revalidate)
		defer t.Stop()
		revalidateC = t.C
	}
	if m.refreshEnabled() {
		t := time.NewTicker(max(m.refreshWindow/2, minRefreshTick))
		defer t.Stop()
		refreshC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-revalidateC:
			if m.State().IsAuthenticated() {
				m.CheckAuthStatus(ctx)
			}
		case <-refreshC:
			if m.State().IsAuthenticated() {
				m.refreshIfExpiring(ctx)
			}
		}
	}
}

func (m *Manager) refreshIfExpiring(ctx context.Context) {
	snap, err := m.store.Load(ctx)
	if err != nil || !snap.Complete() {
		return
	}
	claims, err := diag.Inspect(snap.Token)
	if err != nil || claims.ExpiresAt == nil {
		return
	}
	if claims.ExpiresAt.Sub(m.nowFn()) > m.refreshWindow {
		return
	}
	_ = m.RefreshToken(ctx)
}

// RefreshToken replaces the stored token with a fresh one from the backend
// and keeps the stored user. A rejection ends the session the way a failed
// validation does; any other failure leaves the session untouched.
func (m *Manager) RefreshToken(ctx context.Context) error {
	if m.refresher == nil {
		return ErrRefreshDisabled
	}
	gen := m.gen.Add(1)
	defer m.settle(ctx, gen)

	snap, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if !snap.Complete() || snap.UserErr != nil {
		return ErrNotAuthenticated
	}

	token, err := m.refresher.RefreshToken(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		m.logger.Info(ctx, "token refresh rejected, ending session")
		m.metrics.TokenRefresh("rejected")
		m.clearIfCurrent(ctx, gen)
		m.resolve(ctx, gen, Anonymous, nil)
		return err
	case err != nil:
		m.logger.Warn(ctx, "token refresh failed, keeping session", "error", err)
		m.metrics.TokenRefresh("failed")
		return err
	}

	if m.gen.Load() != gen {
		m.logger.Debug(ctx, "session changed during refresh, dropping new token")
		return nil
	}
	if err := m.store.Save(ctx, token, snap.User); err != nil {
		m.metrics.TokenRefresh("failed")
		return err
	}
	m.metrics.TokenRefresh("ok")
	m.logger.Info(ctx, "session token refreshed")
	return nil
}

// CheckAuthStatus resolves the session from storage and the backend. It
// never fails: every problem resolves to some state.
func (m *Manager) CheckAuthStatus(ctx context.Context) {
	gen := m.gen.Add(1)
	prior := m.State()
	defer m.settle(ctx, gen)

	snap, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error(ctx, "failed to read session storage", "error", err)
		m.resolve(ctx, gen, Anonymous, nil)
		return
	}

	if snap.UserErr != nil {
		m.logger.Warn(ctx, "stored user is corrupt, clearing session", "error", snap.UserErr)
		m.clearIfCurrent(ctx, gen)
		m.resolve(ctx, gen, Anonymous, nil)
		return
	}

	if !snap.Complete() {
		if snap.Token != "" || snap.User != nil {
			m.clearIfCurrent(ctx, gen)
		}
		m.resolve(ctx, gen, Anonymous, nil)
		return
	}

	verdict := m.validator.Validate(ctx, snap.Token)
	if ctx.Err() != nil || m.gen.Load() != gen {
		return
	}

	switch verdict.Outcome {
	case Valid:
		user := snap.User
		if verdict.User != nil {
			user = verdict.User
			if !reflect.DeepEqual(verdict.User, snap.User) {
				if err := m.store.Save(ctx, snap.Token, user); err != nil {
					m.logger.Warn(ctx, "failed to persist refreshed user", "error", err)
				}
			}
		}
		m.resolve(ctx, gen, Authenticated, user)
	case Rejected:
		m.clearIfCurrent(ctx, gen)
		m.resolve(ctx, gen, Anonymous, nil)
	default:
		// No verdict. A session resolved earlier stays as it was; only the
		// very first resolution trusts what storage holds.
		switch prior.Status {
		case Authenticated, Anonymous:
			m.resolve(ctx, gen, prior.Status, prior.User)
		default:
			m.resolve(ctx, gen, Authenticated, snap.User)
		}
	}
}

// settle ends the loading phase of the operation numbered gen unless a later
// one superseded it or ctx was cancelled, in which case state is left alone.
func (m *Manager) settle(ctx context.Context, gen uint64) {
	if ctx.Err() != nil || m.gen.Load() != gen {
		return
	}
	m.setState(func(s *State) { s.Loading = false })
	if st := m.State(); st.Status == Authenticated || st.Status == Anonymous {
		m.readyOnce.Do(func() { close(m.ready) })
	}
}

func (m *Manager) clearIfCurrent(ctx context.Context, gen uint64) {
	if ctx.Err() != nil || m.gen.Load() != gen {
		return
	}
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear session storage", "error", err)
	}
}

func (m *Manager) resolve(ctx context.Context, gen uint64, status Status, user *models.User) {
	if ctx.Err() != nil || m.gen.Load() != gen {
		return
	}
	m.setState(func(s *State) {
		s.Status = status
		s.User = user
	})
}

// Login persists token and user and marks the session authenticated. It
// performs no navigation.
func (m *Manager) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return errors.New("session: token and user are required")
	}
	m.gen.Add(1)
	if err := m.store.Save(ctx, token, user); err != nil {
		return err
	}
	m.setState(func(s *State) {
		s.Status = Authenticated
		s.User = user
		s.Loading = false
	})
	m.readyOnce.Do(func() { close(m.ready) })
	return nil
}

// Logout ends the session. The backend is told first on a best-effort
// basis; local state is always cleared.
func (m *Manager) Logout(ctx context.Context) error {
	m.gen.Add(1)
	if m.backend != nil {
		if err := m.backend.Logout(ctx); err != nil {
			m.logger.Debug(ctx, "backend logout failed", "error", err)
		}
	}
	err := m.store.Clear(ctx)
	m.setState(func(s *State) {
		s.Status = Anonymous
		s.User = nil
		s.Loading = false
	})
	m.readyOnce.Do(func() { close(m.ready) })
	return err
}

func (m *Manager) setState(mutate func(*State)) {
	m.mu.Lock()
	prev := m.state
	mutate(&m.state)
	next := m.state
	if prev == next {
		m.mu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(State), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m.subs[id])
	}
	m.mu.Unlock()

	if prev.Status != next.Status {
		m.metrics.SessionTransition(next.Status.String())
	}
	for _, h := range handlers {
		h(next)
	}
}
