package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/client"
	"github.com/dmitrijs2005/bankfront/internal/client/config"
	"github.com/dmitrijs2005/bankfront/internal/client/crosstab"
	"github.com/dmitrijs2005/bankfront/internal/client/diag"
	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/metrics"
	"github.com/dmitrijs2005/bankfront/internal/client/nav"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/client/services"
	"github.com/dmitrijs2005/bankfront/internal/client/session"
	"github.com/dmitrijs2005/bankfront/internal/client/tokenstore"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *Backend

	bus         *events.Bus
	registry    *prometheus.Registry
	sessions    *session.Manager
	nav         *nav.Navigator
	router      *nav.Router
	diagnostics *diag.Diagnostics

	authService    services.AuthService
	bankingService services.BankingService

	modeMu sync.Mutex
	mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the shell on top of an opened backend. The App does not own
// the backend; close it after Run returns.
func NewApp(c *config.Config, b *Backend, logger logging.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	m, err := metrics.New(metrics.WithRegistry(registry))
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	tokens := tokenstore.New(b.Store)
	navigator := nav.NewNavigator(c.HomePath)
	pending := nav.NewPendingRedirects(storage.NewMemoryStore())

	api := client.New(client.Options{
		BaseURL:          c.APIBaseURL,
		Timeout:          c.RequestTimeout,
		Tokens:           tokens,
		Bus:              bus,
		OnSessionExpired: nav.SessionExpiredHandler(navigator, pending, c.LoginPath),
		Logger:           logger,
		Metrics:          m,
	})

	sessions := session.NewManager(tokens, session.NewValidator(api, logger, m),
		session.WithLogger(logger),
		session.WithMetrics(m),
		session.WithBus(bus),
		session.WithBackendLogout(api),
		session.WithRevalidateInterval(c.RevalidateInterval),
		session.WithTokenRefresh(api, c.RefreshWindow),
	)

	guards := nav.NewGuards(sessions, navigator, pending, nav.Paths{
		Home:     c.HomePath,
		Login:    c.LoginPath,
		Register: c.RegisterPath,
	}, logger)

	a := &App{
		config:         c,
		logger:         logger,
		backend:        b,
		bus:            bus,
		registry:       registry,
		sessions:       sessions,
		nav:            navigator,
		router:         nav.NewRouter(guards, navigator),
		diagnostics:    diag.New(b.Store, logger),
		authService:    services.NewAuthService(api, sessions, logger),
		bankingService: services.NewBankingService(api, logger),
		mode:           ModeOnline,
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}
	a.registerScreens()

	return a, nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.State().IsAuthenticated()
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// shell between online and offline mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.authService.Ping(ctx); err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// getStatus is the prompt decoration: "(alice@bank.test online)".
func (a *App) getStatus() string {
	s := ""
	st := a.sessions.State()
	switch {
	case st.Loading:
		s = "loading "
	case st.User != nil:
		s = st.User.Email + " "
	}
	return "(" + s + string(a.Mode()) + ")"
}

// Run starts the session manager and background workers, then runs the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		a.sessions.Wait()
		wg.Wait()
	}()

	unsubscribe := a.sessions.Subscribe(func(st session.State) {
		a.logger.Debug(ctx, "session state", "status", st.Status, "loading", st.Loading)
	})
	defer unsubscribe()

	a.sessions.Start(ctx)

	if src := a.backend.Source; src != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := crosstab.Forward(ctx, src, a.bus); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn(ctx, "storage watcher stopped", "error", err)
			}
		}()
	}

	if addr := a.config.MetricsAddr; addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, addr, a.registry); err != nil {
				a.logger.Error(ctx, "metrics endpoint failed", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	printlnFn("Welcome to Apna Bank (type 'help' for commands)")
	a.render(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
