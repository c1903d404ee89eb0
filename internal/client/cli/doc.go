// Package cli provides the interactive bankfront shell.
//
// It wires configuration, token storage, the API client, the session
// manager and the screen router into a REPL. Each command navigates to a
// screen; the router's guards decide whether it renders, waits for the
// session to resolve, or redirects to login.
//
// Key features:
//   - Login (with OTP) / Register / Logout
//   - Accounts, transfers and history
//   - Loans, fixed and recurring deposits, bill payments, recharges
//   - EMI, FD and RD calculators (no login needed)
//   - Admin-only diagnostics screen
//
// The shell is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
