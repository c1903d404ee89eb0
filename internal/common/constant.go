// Package common contains shared constants and sentinel errors used across
// bankfront components.
package common

// Header names used on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	RequestIDHeaderName     = "X-Request-ID"
)

// Persistent storage keys. The namespaced pair is what the client reads and
// writes; the legacy pair is only touched by diagnostics.
const (
	TokenKey       = "apna_bank_auth_token"
	UserKey        = "apna_bank_user"
	LegacyTokenKey = "token"
	LegacyUserKey  = "user"
)

// PendingRedirectKey lives in session-scoped storage, never in the
// persistent store.
const PendingRedirectKey = "apna_bank_redirect_after_login"

// SessionExpiredQuery is appended to the login path when the interceptor
// forces a logout.
const SessionExpiredQuery = "session_expired=true"
