package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/common"
)

const pingTimeout = 5 * time.Second

// Login returns the auth payload. When AuthData.MFARequired is set no token
// was issued and VerifyOTP must follow.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthData, error) {
	var out models.AuthData
	err := c.call(ctx, request{
		method: http.MethodPost, route: loginPath, path: loginPath,
		body: models.LoginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*models.AuthData, error) {
	var out models.AuthData
	err := c.call(ctx, request{
		method: http.MethodPost, route: verifyOTPPath, path: verifyOTPPath,
		body: models.VerifyOTPRequest{Email: email, OTP: otp},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in models.RegisterRequest) (*models.AuthData, error) {
	var out models.AuthData
	err := c.call(ctx, request{
		method: http.MethodPost, route: registerPath, path: registerPath, body: in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to drop the session. The request is silent so a
// stale token never triggers the expiry hook while logging out.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(WithSilent(ctx), request{method: http.MethodPost, route: logoutPath, path: logoutPath}, nil)
}

var errNoRefreshedToken = errors.New("refresh response carried no token")

// RefreshToken exchanges the stored token for a new one. The request is
// silent; a 401 still clears the session through the interceptor.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var out models.AuthData
	err := c.call(WithSilent(ctx), request{method: http.MethodPost, route: refreshTokenPath, path: refreshTokenPath}, &out)
	if err != nil {
		return "", err
	}
	token := out.BearerToken()
	if token == "" {
		return "", &APIError{Status: http.StatusOK, Message: "Token refresh failed.", Endpoint: refreshTokenPath, Err: errNoRefreshedToken}
	}
	return token, nil
}

// TokenCheck is the verdict of the validate-token endpoint.
type TokenCheck struct {
	Valid bool
	// User is set only when the backend returned a user record.
	User *models.User
	// Status is the HTTP status of the reply.
	Status int
}

// ValidateToken asks the backend whether token is still accepted. Any HTTP
// error status or an explicit success:false is a rejection; anything else is
// acceptance. The returned error is non-nil only when no reply was received.
//
// The request is silent: a rejection clears the session but does not fire
// the session-expired hook.
func (c *Client) ValidateToken(ctx context.Context, token string) (TokenCheck, error) {
	h := http.Header{}
	h.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	resp, err := c.send(WithSilent(ctx), request{
		method: http.MethodGet, route: validateTokenPath, path: validateTokenPath, header: h,
	})
	if err != nil {
		return TokenCheck{}, err
	}

	check := TokenCheck{Status: resp.status}
	if resp.status >= 400 || resp.env.Failed() {
		return check, nil
	}

	var data models.TokenValidation
	if resp.env.Wrapped && resp.env.decodeData(&data) == nil {
		if data.Valid != nil && !*data.Valid {
			return check, nil
		}
		check.User = data.User
	}
	check.Valid = true
	return check, nil
}

// Ping checks the health endpoint with a short timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.call(ctx, request{method: http.MethodGet, route: healthPath, path: healthPath}, nil)
}
