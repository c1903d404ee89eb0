// Package models holds the data types exchanged with the banking API and
// kept in client storage.
package models

import "strings"

// Role is the authorization role carried on a user record.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleUser     Role = "USER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is the record persisted next to the session token.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Address       string `json:"address,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
