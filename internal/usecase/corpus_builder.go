package usecase

import (
	"regexp"
	"strings"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// Whitespace runs, collapsed to a single space
var whitespacePattern = regexp.MustCompile(`\s+`)

// CorpusBuilder produces the normalized text blobs that get embedded
type CorpusBuilder struct{}

// NewCorpusBuilder creates a corpus builder
func NewCorpusBuilder() *CorpusBuilder {
	return &CorpusBuilder{}
}

// BuildProductCorpus joins the product's description, notes and raw connectivity
// string with the descriptions of its linked features, then normalizes the result.
func (b *CorpusBuilder) BuildProductCorpus(product *domain.Product, featureDescriptions []string) string {
	parts := []string{product.Description, product.Notes, product.Connectivity}
	parts = append(parts, featureDescriptions...)
	return normalizeText(parts)
}

// BuildCatalogCorpora builds the corpus of every product in catalog order
func (b *CorpusBuilder) BuildCatalogCorpora(catalog *domain.Catalog) []string {
	if catalog == nil {
		return nil
	}

	features := catalog.FeatureDescriptions()
	corpora := make([]string, len(catalog.Products))
	for i := range catalog.Products {
		p := &catalog.Products[i]
		corpora[i] = b.BuildProductCorpus(p, features[p.ID])
	}
	return corpora
}

// BuildRequirementQuery joins application type, subtypes, the free-text subtype
// and additional details. An unspecified requirement yields "".
func (b *CorpusBuilder) BuildRequirementQuery(req *domain.Requirement) string {
	return normalizeText([]string{
		req.ApplicationType,
		strings.Join(req.ApplicationSubtypes, " "),
		req.OtherSubtype,
		req.AdditionalDetails,
	})
}

// normalizeText joins the non-blank parts, collapses whitespace and lower-cases
func normalizeText(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}

	joined := whitespacePattern.ReplaceAllString(strings.Join(kept, " "), " ")
	return strings.ToLower(strings.TrimSpace(joined))
}
