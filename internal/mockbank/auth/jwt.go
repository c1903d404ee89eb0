// Package auth issues and verifies the HS256 access tokens of the mock
// backend.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered claims plus the user id and roles. The
// subject is the user's email.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
}

// Subject is what a token is issued for.
type Subject struct {
	UserID int64
	Email  string
	Roles  []string
}

// GenerateToken signs a token for s valid for validityDuration. The returned
// id is the token's jti, used for revocation.
func GenerateToken(s Subject, secretKey []byte, validityDuration time.Duration) (token string, id string, err error) {
	now := time.Now()
	id = uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   s.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: s.UserID,
		Roles:  s.Roles,
	})

	token, err = t.SignedString(secretKey)
	if err != nil {
		return "", "", err
	}

	return token, id, nil
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired, every other failure common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
