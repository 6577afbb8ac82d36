package perfume

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"parfumerie/internal/domain"
	"parfumerie/internal/migrate"
)

func TestPostgres_ListAvailableAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var inStockID string
	err := pool.QueryRow(ctx, `
		INSERT INTO perfumes (name, category, size, price, in_stock)
		VALUES ('Oud Royal', 'Homme', '100ml', 35000.50, TRUE)
		RETURNING id::text
	`).Scan(&inStockID)
	if err != nil {
		t.Fatalf("insert perfume: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO perfumes (name, category, size, price, in_stock) VALUES
		('Ambre Nuit', 'Unisexe', '50ml', 22000, TRUE),
		('Fleur Rare', 'Femme', '50ml', 18000, FALSE)
	`); err != nil {
		t.Fatalf("insert perfumes: %v", err)
	}

	repo := NewPostgres(pool, nil)

	list, err := repo.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 perfumes, got %d", len(list))
	}
	if list[0].Name != "Ambre Nuit" || list[1].Name != "Oud Royal" {
		t.Fatalf("unexpected order %+v", list)
	}

	got, err := repo.GetByID(ctx, inStockID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Price != 35000.50 || got.Category != domain.CategoryMen {
		t.Fatalf("unexpected perfume %+v", got)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for bad id, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Perfume{
		Name:     "Oud Royal",
		Category: domain.CategoryMen,
		Size:     "100ml",
		Price:    35000,
		InStock:  true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected id")
	}

	updated, err := repo.Upsert(ctx, domain.Perfume{
		Name:     "Oud Royal",
		Category: domain.CategoryMen,
		Size:     "100ml",
		Price:    32000,
		InStock:  false,
	})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same id, got %s vs %s", updated.ID, p.ID)
	}

	list, err := repo.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected out of stock perfume hidden, got %+v", list)
	}

	if _, err := repo.Upsert(ctx, domain.Perfume{
		ID:       "11111111-1111-1111-1111-111111111111",
		Name:     "Oud Royal",
		Category: domain.CategoryMen,
		Size:     "100ml",
		Price:    1,
	}); err == nil {
		t.Fatalf("expected id mismatch error")
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, perfumes RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
