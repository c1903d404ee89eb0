package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// AuthData is the data part of login, verify-otp and register responses.
// Older backend builds send the credential as "token" instead of
// "accessToken".
type AuthData struct {
	AccessToken string `json:"accessToken,omitempty"`
	Token       string `json:"token,omitempty"`
	User        *User  `json:"user,omitempty"`
	MFARequired bool   `json:"mfaRequired,omitempty"`
}

// BearerToken returns whichever credential field is populated.
func (a *AuthData) BearerToken() string {
	if a.AccessToken != "" {
		return a.AccessToken
	}
	return a.Token
}

// TokenValidation is the optional data part of validate-token responses.
type TokenValidation struct {
	Valid *bool `json:"valid,omitempty"`
	User  *User `json:"user,omitempty"`
}
