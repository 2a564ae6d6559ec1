package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
)

// Token is the mapping behind an opaque bearer credential.
type Token struct {
	UserID    string
	Kind      TokenKind
	ExpiresAt time.Time
}

// TokenStore issues and resolves opaque bearer tokens held in process
// memory. Expiry is checked lazily on Resolve; expired tokens are evicted
// there rather than by a background sweep.
type TokenStore struct {
	table      Table[Token]
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenStore(table Table[Token], accessTTL, refreshTTL time.Duration) *TokenStore {
	return &TokenStore{
		table:      table,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *TokenStore) AccessTTL() time.Duration {
	return s.accessTTL
}

// Issue mints a crypto-random opaque token for the user.
func (s *TokenStore) Issue(userID string, kind TokenKind) (string, error) {
	ttl := s.accessTTL
	if kind == TokenRefresh {
		ttl = s.refreshTTL
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(raw)

	// Entries are retained past their logical expiry (up to the refresh
	// window) so Resolve can tell an expired credential apart from one that
	// never existed. ExpiresAt carries the real deadline.
	s.table.Put(id, Token{
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: s.now().Add(ttl),
	}, s.refreshTTL)
	return id, nil
}

// Resolve returns the mapping for a token, distinguishing an unknown token
// from an expired one. Expired tokens are evicted on the spot.
func (s *TokenStore) Resolve(id string) (Token, error) {
	token, ok := s.table.Get(id)
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	if s.now().After(token.ExpiresAt) {
		s.table.Delete(id)
		return Token{}, ErrTokenExpired
	}
	return token, nil
}
