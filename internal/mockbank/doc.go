// Package mockbank is an in-memory banking backend speaking the REST
// contract the bankfront client expects. It exists for local development
// and end-to-end tests.
//
// Every reply uses the {success, message, data, timestamp} envelope.
// Authenticated routes accept "Authorization: Bearer <jwt>"; tokens are
// HS256 JWTs whose jti must still be an active session, so logout and
// admin revocation take effect immediately.
package mockbank
