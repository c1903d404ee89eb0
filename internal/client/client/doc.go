// Package client is the HTTP side of bankfront.
//
// # Overview
//
// The package provides:
//  1. Client, a JSON/REST client for the banking backend covering auth
//     (login, OTP verification, registration, logout, token validation),
//     connectivity probing, and the business endpoints for accounts,
//     transactions, loans, investments and payments.
//  2. An http.RoundTripper interceptor that attaches the stored bearer token
//     to every non-public request and, on 401/403 from a non-auth endpoint,
//     clears the stored session, broadcasts events.AuthChanged and invokes
//     the session-expired hook.
//  3. A tolerant decoder for the backend response envelope
//     {success, message, data, timestamp}; bodies without a "success" key
//     are treated as bare data.
//
// # Error Handling
//
// Every failed call returns *APIError. Transport failures match
// ErrUnavailable with errors.Is, and 401/403 responses match
// ErrUnauthorized. APIError.Message carries the backend message when one was
// sent and a user-facing fallback otherwise.
//
// # Silent requests
//
// A context marked with WithSilent still clears the session on 401/403 but
// never triggers the session-expired hook. Background revalidation and
// logout use it.
package client
