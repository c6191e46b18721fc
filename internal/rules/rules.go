// Package rules holds the static scoring configuration: the weight table and the
// keyword tables used to match power sources and connectivity options against
// product text. A Rules value is built once at startup and never mutated.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Weights is the scoring-weight table
type Weights struct {
	FrequencyBand       float64 `yaml:"frequency_band"`
	Environment         float64 `yaml:"environment"`
	ConnectivityOption  float64 `yaml:"connectivity_option"`
	PowerKeyword        float64 `yaml:"power_keyword"`
	TextSimilarityScale float64 `yaml:"text_similarity_scale"`
}

// document mirrors the YAML layout of a rules file
type document struct {
	Weights              Weights             `yaml:"weights"`
	PowerKeywords        map[string][]string `yaml:"power_keywords"`
	ConnectivityKeywords map[string][]string `yaml:"connectivity_keywords"`
}

// PowerPattern is a power keyword compiled for word-boundary matching
type PowerPattern struct {
	Keyword string
	re      *regexp.Regexp
}

// Matches reports whether the keyword appears in text as a whole word or phrase.
// text is expected to be lower-cased.
func (p PowerPattern) Matches(text string) bool {
	return p.re.MatchString(text)
}

// Rules is the immutable scoring configuration
type Rules struct {
	weights      Weights
	power        map[string][]PowerPattern
	connectivity map[string][]string
}

// Default returns the built-in rules
func Default() (*Rules, error) {
	return Parse(defaultRules)
}

// Load reads rules from a YAML file, falling back to the built-in rules when
// path is empty.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML rules document
func Parse(data []byte) (*Rules, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return New(doc.Weights, doc.PowerKeywords, doc.ConnectivityKeywords)
}

// New builds Rules from in-memory tables. Table keys are matched
// case-insensitively; keywords are lower-cased.
func New(weights Weights, power, connectivity map[string][]string) (*Rules, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}

	r := &Rules{
		weights:      weights,
		power:        make(map[string][]PowerPattern, len(power)),
		connectivity: make(map[string][]string, len(connectivity)),
	}

	for label, keywords := range power {
		patterns := make([]PowerPattern, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("compiling power keyword %q: %w", kw, err)
			}
			patterns = append(patterns, PowerPattern{Keyword: kw, re: re})
		}
		r.power[normalizeKey(label)] = patterns
	}

	for token, keywords := range connectivity {
		lowered := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lowered = append(lowered, kw)
			}
		}
		r.connectivity[normalizeKey(token)] = lowered
	}

	return r, nil
}

// Weights returns the scoring-weight table
func (r *Rules) Weights() Weights {
	return r.weights
}

// ConnectivityKeywords returns the synonyms for a requested connectivity token.
// Tokens missing from the table match on themselves.
func (r *Rules) ConnectivityKeywords(token string) []string {
	key := normalizeKey(token)
	keywords, ok := r.connectivity[key]
	if !ok {
		return []string{key}
	}
	return append([]string(nil), keywords...)
}

// PowerPatterns returns the compiled keywords for a power label. Labels missing
// from the table have no keywords and known is false.
func (r *Rules) PowerPatterns(label string) (patterns []PowerPattern, known bool) {
	patterns, known = r.power[normalizeKey(label)]
	return append([]PowerPattern(nil), patterns...), known
}

func validateWeights(w Weights) error {
	values := map[string]float64{
		"frequency_band":        w.FrequencyBand,
		"environment":           w.Environment,
		"connectivity_option":   w.ConnectivityOption,
		"power_keyword":         w.PowerKeyword,
		"text_similarity_scale": w.TextSimilarityScale,
	}
	for name, v := range values {
		if v < 0 {
			return fmt.Errorf("weight %s must be >= 0, got %v", name, v)
		}
	}
	return nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
