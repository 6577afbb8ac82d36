package perfume

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const selectColumns = `id::text, name, category, size, price::float8, image_url, description, in_stock, created_at`

func (r *postgresRepo) ListAvailable(ctx context.Context) ([]domain.Perfume, error) {
	q := `
SELECT ` + selectColumns + `
FROM perfumes
WHERE in_stock = TRUE
ORDER BY name, size
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("perfume repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Perfume
	for rows.Next() {
		p, err := scanPerfume(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("perfume repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("perfume repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Perfume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `
SELECT ` + selectColumns + `
FROM perfumes
WHERE id = $1
`
	p, err := scanPerfume(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("perfume repo: get not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("perfume repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Perfume) (*domain.Perfume, error) {
	const q = `
INSERT INTO perfumes (id, name, category, size, price, image_url, description, in_stock)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (name, size) DO UPDATE SET
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    image_url = EXCLUDED.image_url,
    description = EXCLUDED.description,
    in_stock = EXCLUDED.in_stock
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q,
		p.ID,
		p.Name,
		string(p.Category),
		p.Size,
		p.Price,
		p.ImageURL,
		p.Description,
		p.InStock,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("perfume repo: upsert", zap.String("name", p.Name), zap.String("size", p.Size), zap.Error(err))
		return nil, err
	}
	if p.ID != "" && res.ID != p.ID {
		return nil, fmt.Errorf("perfume repo: id mismatch for name=%s size=%s existing_id=%s import_id=%s", p.Name, p.Size, res.ID, p.ID)
	}
	r.logger.Debug("perfume repo: upserted", zap.String("name", res.Name), zap.String("id", res.ID))
	return &res, nil
}

func scanPerfume(row pgx.Row) (domain.Perfume, error) {
	var (
		p        domain.Perfume
		category string
	)
	err := row.Scan(&p.ID, &p.Name, &category, &p.Size, &p.Price, &p.ImageURL, &p.Description, &p.InStock, &p.CreatedAt)
	p.Category = domain.Category(category)
	return p, err
}
