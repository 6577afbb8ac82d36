package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"parfumerie/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	const q = `
INSERT INTO orders (order_reference, customer_name, customer_phone, delivery_address, delivery_note, total_amount, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, created_at
`
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	err := r.pool.QueryRow(ctx, q,
		o.Reference,
		o.CustomerName,
		o.CustomerPhone,
		o.DeliveryAddress,
		o.DeliveryNote,
		o.TotalAmount,
		string(o.Status),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("order repo: duplicate reference", zap.String("reference", o.Reference))
			return domain.Order{}, domain.ErrAlreadyExists
		}
		r.logger.Error("order repo: insert", zap.String("reference", o.Reference), zap.Error(err))
		return domain.Order{}, err
	}
	r.logger.Info("order repo: inserted", zap.String("reference", o.Reference), zap.String("id", o.ID))
	return o, nil
}

func (r *postgresRepo) InsertOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	const q = `
INSERT INTO order_items (order_id, perfume_id, quantity, unit_price, is_gift_bouquet_item, gift_message)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
`
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(q, orderID, l.PerfumeID, l.Quantity, l.UnitPrice, l.IsGiftBouquetItem, l.GiftMessage)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Error("order repo: insert lines",
			zap.String("order_id", orderID), zap.Int("count", len(lines)), zap.Error(err))
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("order repo: inserted lines", zap.String("order_id", orderID), zap.Int("count", len(lines)))
	return nil
}

func (r *postgresRepo) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	const headerQ = `
SELECT id::text, order_reference, customer_name, customer_phone, delivery_address, delivery_note, total_amount, status, created_at
FROM orders
WHERE order_reference = $1
`
	var (
		o      domain.Order
		status string
	)
	err := r.pool.QueryRow(ctx, headerQ, reference).Scan(
		&o.ID, &o.Reference, &o.CustomerName, &o.CustomerPhone,
		&o.DeliveryAddress, &o.DeliveryNote, &o.TotalAmount, &status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	const linesQ = `
SELECT id::text, order_id::text, perfume_id::text, quantity, unit_price, is_gift_bouquet_item, gift_message, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id
`
	rows, err := r.pool.Query(ctx, linesQ, o.ID)
	if err != nil {
		r.logger.Error("order repo: get lines", zap.String("order_id", o.ID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.PerfumeID, &l.Quantity, &l.UnitPrice, &l.IsGiftBouquetItem, &l.GiftMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
