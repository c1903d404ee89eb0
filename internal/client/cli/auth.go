package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/nav"
	"github.com/dmitrijs2005/bankfront/internal/client/services"
	"github.com/dmitrijs2005/bankfront/internal/common"
)

// Login prompts for credentials, and for a one-time password when the
// backend asks for one. On success the current screen is rendered again so
// the login guard can forward to the page the user originally wanted.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already signed in as", a.sessions.State().User.Email)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, email, string(password))
	if errors.Is(err, services.ErrMFARequired) {
		user, err = a.verifyOTP(ctx, email)
	}
	if err != nil {
		a.reportError(err)
		return err
	}

	printlnFn("Signed in as", user.FullName())
	a.render(ctx)
	return nil
}

func (a *App) verifyOTP(ctx context.Context, email string) (*models.User, error) {
	otp, err := getSimpleText(a.reader, "Enter the one-time password", a.out)
	if err != nil {
		return nil, err
	}
	return a.authService.VerifyOTP(ctx, email, otp)
}

// Register prompts for the new customer's details. The session starts only
// when the backend issued a token; otherwise the user is sent to login.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Sign out before opening a new account.")
		return nil
	}

	f := form{reader: a.reader, w: a.out}
	var in models.RegisterRequest
	var err error

	if in.FirstName, err = f.text("First name"); err != nil {
		return err
	}
	if in.LastName, err = f.text("Last name"); err != nil {
		return err
	}
	if in.Email, err = f.text("Email"); err != nil {
		return err
	}
	if in.PhoneNumber, err = f.text("Mobile number (optional)"); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	again, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if string(password) != string(again) {
		printlnFn("Passwords do not match.")
		return services.ErrValidation
	}
	in.Password = string(password)

	user, err := a.authService.Register(ctx, in)
	switch {
	case errors.Is(err, services.ErrMFARequired):
		user, err = a.verifyOTP(ctx, in.Email)
	case errors.Is(err, services.ErrLoginRequired):
		printlnFn("Account created. Please sign in.")
		a.nav.Navigate(a.config.LoginPath, nav.WithReplace())
		a.render(ctx)
		return nil
	}
	if err != nil {
		a.reportError(err)
		return err
	}

	printlnFn("Welcome,", user.FullName())
	a.render(ctx)
	return nil
}

// Logout ends the session locally even when the backend cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not signed in.")
		return nil
	}

	err := a.authService.Logout(ctx)
	if err != nil {
		a.logger.Warn(ctx, "logout did not clear storage", "error", err)
	}

	printlnFn("Signed out.")
	a.nav.Navigate(a.config.LoginPath, nav.WithReplace())
	a.render(ctx)
	return err
}
