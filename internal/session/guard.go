// Package session issues and validates the time-limited bearer tokens that
// gate supervisor access to the help request ledger.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"frontdesk/api/internal/util"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
)

// TokenStore holds the active supervisor tokens. Exists must report false
// for expired tokens; backends may evict them lazily on that check.
type TokenStore interface {
	Save(ctx context.Context, token string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

// Token is a minted supervisor credential. Possession alone grants access
// until expiry or explicit logout.
type Token struct {
	Value     string
	ExpiresIn time.Duration
}

// Guard authenticates the supervisor password and owns the token set.
type Guard struct {
	tokens       TokenStore
	passwordHash []byte
	ttl          time.Duration
}

// NewGuard derives a bcrypt hash of the configured supervisor password so
// the plaintext is not kept around for comparisons.
func NewGuard(password string, ttl time.Duration, tokens TokenStore) (*Guard, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash supervisor password: %w", err)
	}
	return &Guard{
		tokens:       tokens,
		passwordHash: hash,
		ttl:          ttl,
	}, nil
}

// Authenticate checks the supervisor password and mints a fresh token with
// expiry now + TTL. A wrong password returns ErrInvalidPassword and mints
// nothing.
func (g *Guard) Authenticate(ctx context.Context, password string) (Token, error) {
	if password == "" {
		return Token{}, ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return Token{}, ErrInvalidPassword
	}

	token := util.NewID("svt")
	if err := g.tokens.Save(ctx, token, time.Now().Add(g.ttl)); err != nil {
		return Token{}, fmt.Errorf("save supervisor token: %w", err)
	}
	return Token{Value: token, ExpiresIn: g.ttl}, nil
}

// Validate reports whether a token grants supervisor access right now. The
// result is never cached; callers must check immediately before each gated
// operation.
func (g *Guard) Validate(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := g.tokens.Exists(ctx, token)
	if err != nil {
		log.Printf("session: token check failed: %v", err)
		return false
	}
	return ok
}

// Invalidate removes a token. Unknown or absent tokens are a no-op.
func (g *Guard) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := g.tokens.Delete(ctx, token); err != nil {
		log.Printf("session: token delete failed: %v", err)
	}
}
