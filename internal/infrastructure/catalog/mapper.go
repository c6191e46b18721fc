package catalog

import (
	"strings"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// Product table columns
const (
	ColumnProductID    = "Product_ID"
	ColumnProductName  = "Product_Name"
	ColumnDescription  = "Description_And_Application"
	ColumnNotes        = "Notes"
	ColumnConnectivity = "Connectivity"
	ColumnEnvironment  = "Deployment_Environment"
	ColumnRegions      = "Region Support"
)

// Feature table columns
const (
	ColumnFeatureID          = "Feature_ID"
	ColumnFeatureName        = "Feature_Name"
	ColumnFeatureDescription = "Feature_Description"
)

// Optional columns are filled with "" when absent
var (
	productTextColumns = []string{ColumnProductName, ColumnDescription, ColumnNotes, ColumnConnectivity, ColumnEnvironment, ColumnRegions}
	featureTextColumns = []string{ColumnFeatureName, ColumnFeatureDescription}
)

// row gives by-name access to one CSV record
type row struct {
	index  map[string]int
	values []string
}

// get returns the named cell, or "" when the column or cell is missing
func (r row) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// mapProduct converts a product record into a normalized Product. Regions and
// connectivity tokens are lower-cased and comma-split; environment is lower-cased.
func mapProduct(r row) domain.Product {
	connectivity := r.get(ColumnConnectivity)
	return domain.Product{
		ID:                 strings.TrimSpace(r.get(ColumnProductID)),
		Name:               r.get(ColumnProductName),
		Description:        r.get(ColumnDescription),
		Notes:              r.get(ColumnNotes),
		Connectivity:       connectivity,
		Environment:        strings.ToLower(strings.TrimSpace(r.get(ColumnEnvironment))),
		Regions:            splitList(r.get(ColumnRegions)),
		ConnectivityTokens: splitList(connectivity),
	}
}

func mapFeature(r row) domain.Feature {
	return domain.Feature{
		ID:          strings.TrimSpace(r.get(ColumnFeatureID)),
		Name:        r.get(ColumnFeatureName),
		Description: r.get(ColumnFeatureDescription),
	}
}

func mapProductFeature(r row) domain.ProductFeature {
	return domain.ProductFeature{
		ProductID: strings.TrimSpace(r.get(ColumnProductID)),
		FeatureID: strings.TrimSpace(r.get(ColumnFeatureID)),
	}
}

// splitList lower-cases a comma-separated cell and drops blank items
func splitList(cell string) []string {
	var out []string
	for _, item := range strings.Split(cell, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
