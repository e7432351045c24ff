// Package token issues and verifies the signed bearer tokens that stand in
// for server-side sessions. A token binds a user id and its issue time; the
// server keeps no session record, validity is reconstructed from the
// signature, the token's own expiry and the user's password-change timestamp.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims binds a user id to the registered issue/expiry claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Service signs and verifies bearer tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue produces a token binding userID and the current time.
func (s *Service) Issue(userID int64) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing key is not configured")
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})

	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry and returns the embedded user id
// and issue time. Any failure is reported as ErrInvalidToken.
func (s *Service) Verify(tokenString string) (int64, time.Time, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.IssuedAt == nil {
		return 0, time.Time{}, ErrInvalidToken
	}

	return claims.UserID, claims.IssuedAt.Time, nil
}
