// Package auth holds the credential primitives of the server: bcrypt password
// hashing and HS256 session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token: the standard registered claims
// plus the public identity fields.
//
// exp only has whole-second precision, so it is rounded up and the exact
// expiry instant travels in ExpiresAtNano.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ExpiresAtNano int64  `json:"exp_ns"`
}

// Expiry returns the exact instant the token stops being valid.
func (c *Claims) Expiry() time.Time {
	return time.Unix(0, c.ExpiresAtNano)
}

// GenerateToken signs c with secretKey. The token is issued at now and is
// valid until exactly now+validity.
func GenerateToken(c Claims, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	expiry := now.Add(validity)
	expSeconds := expiry.Truncate(time.Second)
	if expSeconds.Before(expiry) {
		expSeconds = expSeconds.Add(time.Second)
	}

	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(expSeconds)
	c.ExpiresAtNano = expiry.UnixNano()

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies tokenString against secretKey as of now.
//
// The signature is checked before the expiration, so a tampered token is
// common.ErrTokenInvalid even when it is also expired. A correctly signed
// token is common.ErrTokenExpired once now reaches its expiry. Tokens
// without exp_ns, user_id or email are common.ErrTokenInvalid.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
		}
	}

	switch {
	case claims.ExpiresAtNano == 0:
		return nil, fmt.Errorf("%w: missing exp_ns", common.ErrTokenInvalid)
	case claims.UserID == "" || claims.Email == "":
		return nil, fmt.Errorf("%w: missing identity claims", common.ErrTokenInvalid)
	case !now.Before(claims.Expiry()):
		return nil, common.ErrTokenExpired
	}

	return claims, nil
}
