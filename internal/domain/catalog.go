package domain

// Deployment environment tokens
const (
	EnvironmentIndoor  = "indoor"
	EnvironmentOutdoor = "outdoor"
	EnvironmentBoth    = "both"
)

// Product is a normalized catalog entry. Text fields keep their original casing;
// Environment, Regions and ConnectivityTokens are lower-cased by the Catalog Store.
type Product struct {
	ID           string
	Name         string
	Description  string
	Notes        string
	Connectivity string

	Environment        string   // indoor, outdoor, both or ""
	Regions            []string // e.g. ["us915", "eu868"]
	ConnectivityTokens []string // comma-split, lower-cased Connectivity
}

// Feature is a named capability that can be linked to many products
type Feature struct {
	ID          string
	Name        string
	Description string
}

// ProductFeature associates a product with a feature
type ProductFeature struct {
	ProductID string
	FeatureID string
}

// Catalog holds the three normalized tables. It is built once and never mutated.
type Catalog struct {
	Products        []Product
	Features        []Feature
	ProductFeatures []ProductFeature
}

// FeatureDescriptions maps each product ID to the descriptions of its linked
// features, in feature-table order. Links to unknown features are ignored.
func (c *Catalog) FeatureDescriptions() map[string][]string {
	result := make(map[string][]string)
	if c == nil || len(c.ProductFeatures) == 0 {
		return result
	}

	linked := make(map[string]map[string]bool)
	for _, pf := range c.ProductFeatures {
		if linked[pf.FeatureID] == nil {
			linked[pf.FeatureID] = make(map[string]bool)
		}
		linked[pf.FeatureID][pf.ProductID] = true
	}

	for _, f := range c.Features {
		for productID := range linked[f.ID] {
			result[productID] = append(result[productID], f.Description)
		}
	}
	return result
}
