// Package auth carries the authenticated recruiter through request contexts
// and provides the session token primitives.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/employsmart/employsmart/internal/domain"
)

type contextKey int

const recruiterKey contextKey = iota

// WithRecruiter returns a context carrying the authenticated recruiter.
func WithRecruiter(ctx context.Context, r *domain.Recruiter) context.Context {
	return context.WithValue(ctx, recruiterKey, r)
}

// RecruiterFromContext returns the authenticated recruiter, if any.
func RecruiterFromContext(ctx context.Context) (*domain.Recruiter, bool) {
	r, ok := ctx.Value(recruiterKey).(*domain.Recruiter)
	return r, ok
}

// NewToken generates a random session token. The raw value goes into the
// cookie; only its hash is stored.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest of a raw session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
