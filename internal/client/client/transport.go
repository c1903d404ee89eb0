package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/metrics"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/google/uuid"
)

const (
	loginPath         = "/api/v1/auth/login"
	registerPath      = "/api/v1/auth/register"
	verifyOTPPath     = "/api/v1/auth/verify-otp"
	logoutPath        = "/api/v1/auth/logout"
	validateTokenPath = "/api/v1/auth/validate-token"
	refreshTokenPath  = "/api/v1/auth/refresh-token"
	healthPath        = "/api/v1/health"
)

// authEndpoints answer 401 for bad credentials, which must not end a session.
var authEndpoints = []string{loginPath, registerPath, verifyOTPPath}

// publicEndpoints never receive the Authorization header.
var publicEndpoints = append([]string{healthPath}, authEndpoints...)

// TokenStore is the part of the token store the interceptor needs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type silentKey struct{}

// WithSilent marks requests made with ctx as background work: an
// authorization failure still clears the session but does not trigger the
// session-expired hook.
func WithSilent(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentKey{}, true)
}

func IsSilent(ctx context.Context) bool {
	v, _ := ctx.Value(silentKey{}).(bool)
	return v
}

func matchesAny(path string, endpoints []string) bool {
	for _, ep := range endpoints {
		if strings.Contains(path, ep) {
			return true
		}
	}
	return false
}

// authTransport is the request/response interceptor around the real
// transport.
type authTransport struct {
	base      http.RoundTripper
	tokens    TokenStore
	bus       *events.Bus
	onExpired func(ctx context.Context)
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req = req.Clone(ctx)

	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	if !matchesAny(req.URL.Path, publicEndpoints) && req.Header.Get(common.AuthorizationHeaderName) == "" && t.tokens != nil {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			t.logger.Warn(ctx, "token store read failed", "error", err)
		} else if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if !matchesAny(req.URL.Path, authEndpoints) {
			t.expire(ctx, req.URL.Path, resp.StatusCode)
		}
	}
	return resp, nil
}

func (t *authTransport) expire(ctx context.Context, path string, status int) {
	t.logger.Info(ctx, "authorization rejected, clearing session", "endpoint", path, "status", status)
	t.metrics.ForcedLogout()

	if t.tokens != nil {
		if err := t.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			t.logger.Error(ctx, "failed to clear session", "error", err)
		}
	}
	if t.bus != nil {
		t.bus.Publish(events.Event{Kind: events.AuthChanged})
	}
	if t.onExpired != nil && !IsSilent(ctx) {
		t.onExpired(ctx)
	}
}
