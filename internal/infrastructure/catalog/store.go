// Package catalog loads the product, feature and product-feature tables from CSV
// files into a normalized domain.Catalog.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// Files names the three catalog tables
type Files struct {
	Products        string
	Features        string
	ProductFeatures string
}

// CSVStore is a CatalogRepository reading CSV files from disk
type CSVStore struct {
	files  Files
	logger zerolog.Logger
}

// NewCSVStore creates a store for the given files
func NewCSVStore(files Files, logger zerolog.Logger) *CSVStore {
	return &CSVStore{
		files:  files,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// LoadCatalog reads and normalizes all three tables
func (s *CSVStore) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	readers := make([]io.Reader, 0, 3)
	for _, path := range []string{s.files.Products, s.files.Features, s.files.ProductFeatures} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogLoad, err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	catalog, err := Load(readers[0], readers[1], readers[2], s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("products", len(catalog.Products)).
		Int("features", len(catalog.Features)).
		Int("links", len(catalog.ProductFeatures)).
		Msg("catalog loaded")
	return catalog, nil
}

// Load parses the three tables from readers
func Load(products, features, productFeatures io.Reader, logger zerolog.Logger) (*domain.Catalog, error) {
	catalog := &domain.Catalog{}

	productRows, err := readTable("products", products, []string{ColumnProductID}, productTextColumns, logger)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(productRows))
	for _, r := range productRows {
		p := mapProduct(r)
		if p.ID == "" {
			logger.Warn().Msg("skipping product row without Product_ID")
			continue
		}
		if seen[p.ID] {
			logger.Warn().Str("product_id", p.ID).Msg("skipping duplicate Product_ID")
			continue
		}
		seen[p.ID] = true
		catalog.Products = append(catalog.Products, p)
	}

	featureRows, err := readTable("features", features, []string{ColumnFeatureID}, featureTextColumns, logger)
	if err != nil {
		return nil, err
	}
	seenFeatures := make(map[string]bool, len(featureRows))
	for _, r := range featureRows {
		f := mapFeature(r)
		if f.ID == "" || seenFeatures[f.ID] {
			logger.Warn().Str("feature_id", f.ID).Msg("skipping feature row with blank or duplicate Feature_ID")
			continue
		}
		seenFeatures[f.ID] = true
		catalog.Features = append(catalog.Features, f)
	}

	linkRows, err := readTable("product features", productFeatures, []string{ColumnProductID, ColumnFeatureID}, nil, logger)
	if err != nil {
		return nil, err
	}
	for _, r := range linkRows {
		link := mapProductFeature(r)
		if link.ProductID == "" || link.FeatureID == "" {
			continue
		}
		catalog.ProductFeatures = append(catalog.ProductFeatures, link)
	}

	return catalog, nil
}

// readTable parses a CSV table with a header row. Required columns must be
// present; missing optional columns are logged and read as "".
func readTable(name string, r io.Reader, required, optional []string, logger zerolog.Logger) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s table has no header", domain.ErrMissingColumn, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s header: %v", domain.ErrCatalogLoad, name, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s table lacks %q", domain.ErrMissingColumn, name, col)
		}
	}
	for _, col := range optional {
		if _, ok := index[col]; !ok {
			logger.Warn().Str("table", name).Str("column", col).Msg("expected column not found, using empty values")
		}
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrCatalogLoad, name, err)
		}
		rows = append(rows, row{index: index, values: record})
	}
	return rows, nil
}
