// Package auth verifies the identity tokens clients present on the
// Authorization header and maps their claims onto the request identity.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
)

// Claims are the identity token claims. The subject is the member ID; the
// profile fields ride along so sign-in sync needs no extra lookup.
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed identity tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates an identity token verifier.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token, returning the caller's identity.
func (v *Verifier) Verify(tokenString string) (*middleware.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse identity token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("identity token missing subject")
	}

	return &middleware.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.AvatarURL,
	}, nil
}
