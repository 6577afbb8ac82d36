// Package cartstore keeps one cart per session, in process memory or in
// Redis, and guards checkout with a per-session busy flag.
package cartstore

import (
	"context"
	"errors"

	"parfumerie/internal/cart"
)

// ErrBusy is returned while a checkout holds the session's busy flag.
var ErrBusy = errors.New("cart is busy")

// Store holds session carts.
type Store interface {
	// Load returns the session cart, or an empty cart when there is none.
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	// Update applies fn to the session cart atomically and saves the
	// result. It fails with ErrBusy while a checkout is running.
	Update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
	// Acquire takes the busy flag. The returned func releases it.
	Acquire(ctx context.Context, sessionID string) (func(), error)
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func lockKey(sessionID string) string {
	return "checkout:" + sessionID
}
