package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
)

type tokenRow struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

type TokenRepository struct {
	s *Store
}

func (s *Store) Tokens() *TokenRepository {
	return &TokenRepository{s: s}
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, session auth.SessionTrackingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = tokenRow{userID: userID, expiresAt: time.Unix(expiresAt, 0)}
	return nil
}

func (r *TokenRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.tokens[token]
	if !ok {
		return "", true, nil
	}
	return row.userID, row.revoked || !row.expiresAt.After(r.s.now()), nil
}

func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if row, ok := r.s.tokens[token]; ok {
		row.revoked = true
		r.s.tokens[token] = row
	}
	return nil
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for token, row := range r.s.tokens {
		if row.userID == userID {
			row.revoked = true
			r.s.tokens[token] = row
		}
	}
	return nil
}
