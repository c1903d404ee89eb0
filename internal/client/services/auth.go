package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/logging"
)

const minPasswordLen = 8

// AuthClient is the part of the API client used for authentication.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*models.AuthData, error)
	VerifyOTP(ctx context.Context, email, otp string) (*models.AuthData, error)
	Register(ctx context.Context, in models.RegisterRequest) (*models.AuthData, error)
	Ping(ctx context.Context) error
}

// Sessions is the part of the session manager the service drives.
type Sessions interface {
	Login(ctx context.Context, token string, user *models.User) error
	Logout(ctx context.Context) error
}

// AuthService defines authentication operations for the shell.
//
// Login and VerifyOTP return the signed-in user; Login returns
// ErrMFARequired when the backend asks for a one-time password first.
// Register never fabricates a session: it signs the user in only when the
// backend returned a token.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	VerifyOTP(ctx context.Context, email, otp string) (*models.User, error)
	Register(ctx context.Context, in models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client   AuthClient
	sessions Sessions
	logger   logging.Logger
}

func NewAuthService(client AuthClient, sessions Sessions, logger logging.Logger) AuthService {
	return &authService{client: client, sessions: sessions, logger: logger}
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email %q is not valid", email)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, invalid("password is required")
	}

	data, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, data)
}

func (a *authService) VerifyOTP(ctx context.Context, email, otp string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return nil, invalid("one-time password is required")
	}

	data, err := a.client.VerifyOTP(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, data)
}

func (a *authService) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, invalid("first and last name are required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	if in.PhoneNumber != "" && !mobilePattern.MatchString(in.PhoneNumber) {
		return nil, invalid("phone number must have 10 digits")
	}

	data, err := a.client.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	if data.MFARequired {
		return data.User, ErrMFARequired
	}
	if data.BearerToken() == "" || data.User == nil {
		return data.User, ErrLoginRequired
	}
	return a.establish(ctx, data)
}

// establish turns an auth payload into a session.
func (a *authService) establish(ctx context.Context, data *models.AuthData) (*models.User, error) {
	if data.MFARequired {
		return nil, ErrMFARequired
	}
	token := data.BearerToken()
	if token == "" || data.User == nil {
		return nil, errors.New("backend returned no token or user")
	}
	if err := a.sessions.Login(ctx, token, data.User); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "signed in", "user_id", data.User.ID, "role", data.User.Role)
	return data.User, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
