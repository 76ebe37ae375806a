package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

const (
	colCuisine = "Cuisine"
	colName    = "Item Name"
	colPrice   = "Price"
)

var _ ports.MenuCatalog = (*MenuCatalog)(nil)

// MenuCatalog groups menu items by lower-cased cuisine. It is immutable after
// loading.
type MenuCatalog struct {
	byCuisine map[string][]domain.MenuItem
	size      int
}

// LoadMenus reads the menu CSV at path. A missing file yields an empty
// catalogue.
func LoadMenus(path string) (*MenuCatalog, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &MenuCatalog{byCuisine: map[string][]domain.MenuItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open menus: %w", err)
	}
	defer f.Close()

	return ParseMenus(f)
}

// ParseMenus reads a CSV with a header row naming the Cuisine, Item Name and
// Price columns. Blank lines are skipped and cells are trimmed. Rows whose
// price is not a number are dropped.
func ParseMenus(r io.Reader) (*MenuCatalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &MenuCatalog{byCuisine: map[string][]domain.MenuItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read menu header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{colCuisine, colName, colPrice} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("storage: menu csv: missing column %q", col)
		}
	}

	cat := &MenuCatalog{byCuisine: make(map[string][]domain.MenuItem)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: read menu row: %w", err)
		}

		cuisine := cell(row, idx[colCuisine])
		if cuisine == "" {
			continue
		}
		price, ok := parsePrice(cell(row, idx[colPrice]))
		if !ok {
			continue
		}

		key := strings.ToLower(cuisine)
		cat.byCuisine[key] = append(cat.byCuisine[key], domain.MenuItem{
			Name:  cell(row, idx[colName]),
			Price: price,
		})
		cat.size++
	}
	return cat, nil
}

// MenuFor returns a copy of the items served for r's cuisine, or an empty
// slice when r has no cuisine.
func (c *MenuCatalog) MenuFor(r domain.Restaurant) []domain.MenuItem {
	items := c.byCuisine[r.CuisineKey()]
	out := make([]domain.MenuItem, len(items))
	copy(out, items)
	return out
}

// Len is the number of menu items loaded.
func (c *MenuCatalog) Len() int { return c.size }

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
