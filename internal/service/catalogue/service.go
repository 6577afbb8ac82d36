package catalogue

import (
	"context"
	"errors"
	"strings"

	"parfumerie/internal/domain"
)

type perfumeRepo interface {
	ListAvailable(ctx context.Context) ([]domain.Perfume, error)
	GetByID(ctx context.Context, id string) (*domain.Perfume, error)
}

type Service struct {
	repo perfumeRepo
}

func New(repo perfumeRepo) *Service {
	return &Service{repo: repo}
}

type CategorySummary struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
}

// ListAvailable returns in-stock perfumes ordered by name. An empty filter
// or "Tous" returns every category.
func (s *Service) ListAvailable(ctx context.Context, category string) ([]domain.Perfume, error) {
	category = strings.TrimSpace(category)
	var (
		want     domain.Category
		filtered bool
	)
	if category != "" && !strings.EqualFold(category, domain.CategoryAll) {
		c, ok := domain.ParseCategory(category)
		if !ok {
			return nil, &domain.ValidationError{Field: "category", Message: "Catégorie inconnue"}
		}
		want, filtered = c, true
	}

	all, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, &domain.CollaboratorError{Op: "list perfumes", Err: err}
	}
	result := make([]domain.Perfume, 0, len(all))
	for _, p := range all {
		if !p.InStock {
			continue
		}
		if filtered && p.Category != want {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Get returns an orderable perfume. Missing and out-of-stock perfumes are
// both reported as domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Perfume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.CollaboratorError{Op: "get perfume", Err: err}
	}
	if !p.InStock {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetMany resolves ids in order, keeping duplicates. Each distinct id is
// looked up once.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]domain.Perfume, error) {
	seen := make(map[string]*domain.Perfume, len(ids))
	out := make([]domain.Perfume, 0, len(ids))
	for _, id := range ids {
		p, ok := seen[id]
		if !ok {
			var err error
			if p, err = s.Get(ctx, id); err != nil {
				return nil, err
			}
			seen[id] = p
		}
		out = append(out, *p)
	}
	return out, nil
}

// Categories counts available perfumes per category.
func (s *Service) Categories(ctx context.Context) ([]CategorySummary, error) {
	all, err := s.ListAvailable(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Category]int)
	for _, p := range all {
		counts[p.Category]++
	}
	out := make([]CategorySummary, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		out = append(out, CategorySummary{Category: c, Count: counts[c]})
	}
	return out, nil
}
