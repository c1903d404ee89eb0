// Package session owns the authentication state of a bankfront process.
//
// Manager is the single source of truth for {status, user, loading}. It is
// created once and passed to every consumer; consumers read State and
// Subscribe to changes instead of reaching for globals.
//
// Lifecycle:
//
//	UNINITIALIZED -> LOADING -> AUTHENTICATED | ANONYMOUS
//
// After the first resolution the manager moves between AUTHENTICATED and
// ANONYMOUS on Login, Logout, and every CheckAuthStatus triggered by a
// storage change, an auth-changed event or the periodic revalidation.
//
// Overlapping checks resolve to the most recently started one: every check,
// login and logout takes a new generation number and results carrying an
// older number are dropped.
package session
