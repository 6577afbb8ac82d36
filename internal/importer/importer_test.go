package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"parfumerie/internal/domain"
)

type stubPerfumeRepo struct {
	items []domain.Perfume
	err   error
}

func (s *stubPerfumeRepo) Upsert(_ context.Context, p domain.Perfume) (*domain.Perfume, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,category,size,price,image_url,description,in_stock
00000000-0000-0000-0000-000000000001,Oud Royal,Homme,100ml,35000,https://example.com/oud.jpg,Boisé et intense,true
,Fleur de Lune,femme,50ml,18 500.50,,,
,,,,,,,
,Ambre Doux,Unisexe,75ml,22000,,Chaleureux,false`

	repo := &stubPerfumeRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.items) != 3 {
		t.Fatalf("expected 3 perfumes imported, got %d/%d", count, len(repo.items))
	}

	first := repo.items[0]
	if first.ID != "00000000-0000-0000-0000-000000000001" || first.Category != domain.CategoryMen || first.Price != 35000 || !first.InStock {
		t.Fatalf("unexpected first perfume: %+v", first)
	}
	second := repo.items[1]
	if second.Category != domain.CategoryWomen || second.Price != 18500.5 || !second.InStock {
		t.Fatalf("unexpected second perfume: %+v", second)
	}
	if repo.items[2].InStock {
		t.Fatalf("expected third perfume out of stock")
	}
}

func TestCSVImporter_InvalidRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "name,price\nOud,100",
		"bad category":   "name,category,price\nOud,Enfant,100",
		"bad price":      "name,category,price\nOud,Homme,abc",
		"negative price": "name,category,price\nOud,Homme,-5",
		"bad id":         "id,name,category,price\n123,Oud,Homme,100",
		"bad stock":      "name,category,price,in_stock\nOud,Homme,100,peut-être",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubPerfumeRepo{})
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVImporter_RepoError(t *testing.T) {
	repo := &stubPerfumeRepo{err: errors.New("db down")}
	imp := NewCSVImporter(strings.NewReader("name,category,price\nOud,Homme,100"), repo)
	count, err := imp.Run(context.Background())
	if err == nil || count != 0 {
		t.Fatalf("expected repo error, got count=%d err=%v", count, err)
	}
}
