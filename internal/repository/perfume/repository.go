package perfume

import (
	"context"

	"parfumerie/internal/domain"
)

type Repository interface {
	// ListAvailable returns in-stock perfumes ordered by name.
	ListAvailable(ctx context.Context) ([]domain.Perfume, error)
	GetByID(ctx context.Context, id string) (*domain.Perfume, error)
	// Upsert inserts or updates by (name, size).
	Upsert(ctx context.Context, p domain.Perfume) (*domain.Perfume, error)
}
