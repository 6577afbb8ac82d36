package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"parfumerie/internal/domain"
	tokenrepo "parfumerie/internal/repository/token"
)

const issueAttempts = 5

type tokenManager struct {
	repo tokenrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

// Issue stores a fresh random token for sessionID, retrying on collision.
func (m *tokenManager) Issue(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl).UTC()
	for i := 0; i < issueAttempts; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			SessionID: sessionID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// Validate returns the stored token if it exists and has not expired.
// Expired tokens are deleted.
func (m *tokenManager) Validate(ctx context.Context, token string) (*tokenrepo.Token, error) {
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(meta.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return nil, domain.ErrNotFound
	}
	return meta, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
