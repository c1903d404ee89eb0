package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/client"
	"github.com/dmitrijs2005/bankfront/internal/client/nav"
	"github.com/dmitrijs2005/bankfront/internal/client/services"
	"github.com/dmitrijs2005/bankfront/internal/client/session"
)

// maxRenders bounds re-renders caused by a forced logout mid-screen.
const maxRenders = 3

const defaultSettle = 10 * time.Second

func (a *App) Open(ctx context.Context, location string) error {
	a.nav.Navigate(location)
	a.render(ctx)
	return nil
}

func (a *App) Back(ctx context.Context) error {
	if !a.nav.Back() {
		printlnFn("Nothing to go back to.")
		return nil
	}
	a.render(ctx)
	return nil
}

// Status prints the session, connectivity and storage state.
func (a *App) Status(ctx context.Context) error {
	st := a.sessions.State()
	printlnFn("Session:", st.Status)
	if st.User != nil {
		printlnFn("User:", st.User.FullName(), "<"+st.User.Email+">", st.User.Role)
	}
	printlnFn("Connectivity:", a.Mode())
	printlnFn("Storage:", a.config.StorageBackend)
	printlnFn("Location:", a.nav.Current())

	ds, err := a.diagnostics.CheckStatus(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}
	if ds.HasToken {
		printlnFn("Token:", ds.MaskedToken)
	}
	return nil
}

// settle waits until the session is no longer loading, ctx ends or the
// request timeout passes.
func (a *App) settle(ctx context.Context) {
	if !a.sessions.State().Loading {
		return
	}

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := a.sessions.Subscribe(func(st session.State) {
		if !st.Loading {
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()

	if !a.sessions.State().Loading {
		return
	}

	wait := a.config.RequestTimeout
	if wait <= 0 {
		wait = defaultSettle
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-done:
	case <-ctx.Done():
	case <-timer.C:
	}
}

// render shows the screen at the current location. A screen that ends in a
// forced logout has already been navigated away from by the session-expired
// hook, so the new location is rendered in its place.
func (a *App) render(ctx context.Context) {
	for range maxRenders {
		a.settle(ctx)

		err := a.router.Render(ctx, a.out)
		switch {
		case err == nil:
			return
		case errors.Is(err, client.ErrUnauthorized):
			continue
		case errors.Is(err, errCancelled):
			printlnFn("Cancelled.")
		case errors.Is(err, nav.ErrStillLoading):
			printlnFn("Still checking your session, try again in a moment.")
		case errors.Is(err, nav.ErrNoRoute):
			printlnFn("No such screen:", a.nav.Path())
		default:
			a.reportError(err)
		}
		return
	}
}

// reportError prints the user-facing text of err.
func (a *App) reportError(err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		printlnFn("Error:", apiErr.Message)
	case errors.Is(err, services.ErrValidation):
		printlnFn(err.Error())
	default:
		printlnFn("Error:", err.Error())
	}
}
