// Package invite issues and verifies the signed tokens behind mate invite
// links. Tokens are HMAC-signed, carry the inviter's user ID, and expire
// after a configurable window (seven days by default).
package invite

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "mates-rates"

// Claims are the registered claims plus the inviter's user ID.
type Claims struct {
	InviterID string `json:"inviter_id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies invite tokens. A dedicated secret keeps invite
// links from ever being accepted as session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token signer/verifier.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed invite token for the given inviter. The JWT ID is a
// fresh UUID so single-use enforcement has something to key on.
func (t *Tokens) Issue(inviterID string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		InviterID: inviterID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   inviterID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token, returning its claims. Expired tokens,
// wrong signatures, and tokens signed with any algorithm other than HS256
// all fail.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse invite token: %w", err)
	}

	if claims.InviterID == "" {
		return nil, fmt.Errorf("invite token missing inviter")
	}

	return claims, nil
}
