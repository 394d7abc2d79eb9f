// Package token issues and verifies signed, time-bound credential tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens with a process-wide secret. The secret and TTL
// are fixed at construction and never mutated.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. TTL is the fixed validity window of every
// issued token.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue creates a signed token carrying the user ID and email, valid for the
// issuer's TTL from now.
func (i *Issuer) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(i.ttl)
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, structure and expiry. There is no leeway: a token
// is invalid the moment its validity window ends. No revocation list exists;
// a leaked token stays valid until natural expiry.
func (i *Issuer) Verify(raw string) (model.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	id, err := uuid.FromString(c.Subject)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return model.Identity{UserID: id, Email: c.Email}, nil
}
