package order

import (
	"context"

	"parfumerie/internal/domain"
)

type Repository interface {
	// InsertOrder stores the header and returns it with ID and CreatedAt
	// filled in. A duplicate reference yields domain.ErrAlreadyExists.
	InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	// InsertOrderLines stores all lines of an order in one transaction.
	InsertOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
}
