// Package services contains the application services the shell calls:
// AuthService drives login, OTP verification, registration and logout
// through the session manager, and BankingService wraps the business
// endpoints with local form validation.
//
// Validation failures wrap ErrValidation and never reach the network or
// the session layer.
package services
