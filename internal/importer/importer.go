package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"parfumerie/internal/domain"
)

type PerfumeWriter interface {
	Upsert(ctx context.Context, p domain.Perfume) (*domain.Perfume, error)
}

// CSVImporter reads a perfume catalogue CSV and inserts or updates each row.
//
// Expected headers: id, name, category, size, price, image_url,
// description, in_stock. Only name, category and price are required.
type CSVImporter struct {
	reader *csv.Reader
	repo   PerfumeWriter
}

func NewCSVImporter(r io.Reader, repo PerfumeWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, repo: repo}
}

// Run upserts every data row and returns how many were written. It stops
// at the first invalid row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "category", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.repo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert perfume %q: %w", p.Name, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Perfume, error) {
	p := domain.Perfume{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Size:        pick(record, index, "size"),
		ImageURL:    pick(record, index, "image_url"),
		Description: pick(record, index, "description"),
		InStock:     true,
	}
	if p.Name == "" {
		return p, errors.New("name required")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return p, fmt.Errorf("invalid id %q", p.ID)
		}
	}

	cat, ok := domain.ParseCategory(pick(record, index, "category"))
	if !ok {
		return p, fmt.Errorf("unknown category %q", pick(record, index, "category"))
	}
	p.Category = cat

	price, err := decimal.NewFromString(strings.ReplaceAll(pick(record, index, "price"), " ", ""))
	if err != nil {
		return p, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return p, fmt.Errorf("negative price %s", price)
	}
	p.Price = price.Round(2).InexactFloat64()

	if v := pick(record, index, "in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("invalid in_stock %q", v)
		}
		p.InStock = inStock
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
