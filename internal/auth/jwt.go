// Package auth verifies bearer tokens issued by the identity provider.
// Sign-up, login and refresh happen elsewhere; this service only checks
// signatures and reads the subject.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// RoleAnon is the role carried by the provider's public API key. Such a
// token is valid but identifies nobody.
const RoleAnon = "anon"

// Identity is the verified caller behind a bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Anonymous reports whether the token identifies no user.
func (i Identity) Anonymous() bool { return i.UserID == uuid.Nil }

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewVerifier creates a verifier. Empty issuer or audience skips that check.
// secret must be at least 32 characters for HS256 security.
func NewVerifier(secret, issuer, audience string, leeway time.Duration) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
	}
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Verify parses and validates a token. Every failure wraps
// domain.ErrUnauthorized.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: token is empty", domain.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: parse token: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}

	if claims.Role == RoleAnon {
		return Identity{Role: RoleAnon}, nil
	}

	if v.audience != "" && !hasAudience(claims.Audience, v.audience) {
		return Identity{}, fmt.Errorf("%w: invalid audience %v", domain.ErrUnauthorized, claims.Audience)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject UUID: %w", domain.ErrUnauthorized, err)
	}
	if userID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: empty subject", domain.ErrUnauthorized)
	}

	return Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
