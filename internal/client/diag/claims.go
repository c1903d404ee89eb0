package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the shell shows about a JWT-shaped token. The signature
// is not verified; this is for display only.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
	Roles     []string
}

// Expired reports whether the token had expired at now. Tokens without an
// exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

type tokenClaims struct {
	Roles rolesClaim `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// rolesClaim accepts both "roles":["A","B"] and "roles":"A".
type rolesClaim []string

func (r *rolesClaim) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*r = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one != "" {
		*r = []string{one}
	}
	return nil
}

// Inspect decodes the payload of a JWT without checking its signature.
func Inspect(token string) (*Claims, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), common.BearerPrefix)
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("%w: not a JWT", common.ErrInvalidToken)
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	c := &Claims{Subject: tc.Subject, Roles: tc.Roles}
	if tc.ExpiresAt != nil {
		exp := tc.ExpiresAt.Time
		c.ExpiresAt = &exp
	}
	return c, nil
}
