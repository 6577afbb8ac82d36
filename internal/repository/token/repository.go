package token

import (
	"context"
	"time"
)

// Token maps an opaque bearer token to the session that owns a cart.
type Token struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	// Create fails with domain.ErrAlreadyExists on a token collision.
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
