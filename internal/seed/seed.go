package seed

import (
	"context"
	"fmt"

	"parfumerie/internal/domain"
)

type PerfumeWriter interface {
	Upsert(ctx context.Context, p domain.Perfume) (*domain.Perfume, error)
}

// Perfumes is the demo catalogue. Prices are in FCFA.
var Perfumes = []domain.Perfume{
	{Name: "Oud Royal", Category: domain.CategoryMen, Size: "100ml", Price: 35000, Description: "Oud fumé et cuir, sillage intense.", InStock: true},
	{Name: "Vétiver de Casamance", Category: domain.CategoryMen, Size: "75ml", Price: 24500, Description: "Vétiver frais et agrumes.", InStock: true},
	{Name: "Fleur de Lune", Category: domain.CategoryWomen, Size: "50ml", Price: 18500, Description: "Jasmin de nuit et musc blanc.", InStock: true},
	{Name: "Rose Téranga", Category: domain.CategoryWomen, Size: "100ml", Price: 29900, Description: "Rose de Damas et poivre rose.", InStock: true},
	{Name: "Ambre Doux", Category: domain.CategoryUnisex, Size: "75ml", Price: 22000, Description: "Ambre, vanille et benjoin.", InStock: true},
	{Name: "Bissap Glacé", Category: domain.CategoryUnisex, Size: "50ml", Price: 15000, Description: "Hibiscus et menthe fraîche.", InStock: true},
	{Name: "Encens Sacré", Category: domain.CategoryUnisex, Size: "100ml", Price: 32000, Description: "Encens, myrrhe et bois de santal.", InStock: false},
}

// Apply upserts the demo catalogue. It is idempotent; perfumes match on
// name and size.
func Apply(ctx context.Context, repo PerfumeWriter) (int, error) {
	for i, p := range Perfumes {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert perfume %s (%s): %w", p.Name, p.Size, err)
		}
	}
	return len(Perfumes), nil
}
