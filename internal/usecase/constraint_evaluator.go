package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/rules"
)

// ConstraintEvaluator checks products against the hard constraints of a requirement
type ConstraintEvaluator struct {
	rules   *rules.Rules
	weights rules.Weights
}

// NewConstraintEvaluator creates an evaluator bound to a scoring configuration
func NewConstraintEvaluator(r *rules.Rules) *ConstraintEvaluator {
	return &ConstraintEvaluator{
		rules:   r,
		weights: r.Weights(),
	}
}

// criteria is a requirement reduced to what the hard constraints look at.
// It is derived once per request and shared read-only by every evaluation.
type criteria struct {
	frequencyBand string
	environment   string
	connectivity  []connectivityCriterion
	powerLabels   []string
	power         []powerCriterion
}

type connectivityCriterion struct {
	token    string
	keywords []string
}

type powerCriterion struct {
	label    string
	patterns []rules.PowerPattern
}

func (e *ConstraintEvaluator) compile(req *domain.Requirement) *criteria {
	c := &criteria{
		frequencyBand: strings.ToLower(req.FrequencyBand),
		environment:   strings.ToLower(req.Environment),
	}

	for _, token := range req.ConnectivityTokens() {
		c.connectivity = append(c.connectivity, connectivityCriterion{
			token:    token,
			keywords: e.rules.ConnectivityKeywords(token),
		})
	}

	// Labels without keywords stay requested and can never match
	for _, label := range req.PowerLabels() {
		patterns, _ := e.rules.PowerPatterns(label)
		c.powerLabels = append(c.powerLabels, label)
		c.power = append(c.power, powerCriterion{label: label, patterns: patterns})
	}

	return c
}

// Evaluate checks one product against a requirement. Every dimension is evaluated
// even after a failure so the explanation is complete.
func (e *ConstraintEvaluator) Evaluate(product *domain.Product, req *domain.Requirement) domain.ConstraintResult {
	return e.evaluate(product, e.compile(req))
}

// EvaluateAll evaluates every product with up to workers goroutines. Results are
// returned in product order regardless of scheduling.
func (e *ConstraintEvaluator) EvaluateAll(
	ctx context.Context,
	products []domain.Product,
	req *domain.Requirement,
	workers int,
) ([]domain.ConstraintResult, error) {
	c := e.compile(req)
	results := make([]domain.ConstraintResult, len(products))

	if workers <= 1 || len(products) < 2 {
		for i := range products {
			results[i] = e.evaluate(&products[i], c)
		}
		return results, nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range products {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = e.evaluate(&products[i], c)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting evaluation task: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *ConstraintEvaluator) evaluate(product *domain.Product, c *criteria) domain.ConstraintResult {
	result := domain.ConstraintResult{Passed: true}

	apply := func(outcome *bool, score float64, message string) *bool {
		if outcome != nil {
			if *outcome {
				result.Score += score
			} else {
				result.Passed = false
			}
		}
		result.Explanation = append(result.Explanation, message)
		return outcome
	}

	result.Details.FrequencyBand = apply(e.checkFrequencyBand(product, c))
	result.Details.Environment = apply(e.checkEnvironment(product, c))
	result.Details.Connectivity = apply(e.checkConnectivity(product, c))
	result.Details.Power = apply(e.checkPower(product, c))

	return result
}

func (e *ConstraintEvaluator) checkFrequencyBand(product *domain.Product, c *criteria) (*bool, float64, string) {
	if c.frequencyBand == "" {
		return nil, 0, "Frequency band not specified by user."
	}

	band := strings.ToUpper(c.frequencyBand)
	for _, region := range product.Regions {
		if region == c.frequencyBand {
			return domain.Outcome(true), e.weights.FrequencyBand, "Matched frequency band: " + band
		}
	}
	return domain.Outcome(false), 0, fmt.Sprintf(
		"FAILED frequency band: Product supports [%s], required %s",
		strings.Join(product.Regions, ", "), band,
	)
}

func (e *ConstraintEvaluator) checkEnvironment(product *domain.Product, c *criteria) (*bool, float64, string) {
	if c.environment == "" {
		return nil, 0, "Deployment environment not specified by user."
	}

	productEnv := strings.ToLower(product.Environment)
	if environmentCompatible(c.environment, productEnv) {
		return domain.Outcome(true), e.weights.Environment, fmt.Sprintf(
			"Matched environment: User '%s', Product '%s'",
			capitalize(c.environment), capitalize(productEnv),
		)
	}
	return domain.Outcome(false), 0, fmt.Sprintf(
		"FAILED environment: Product is '%s', required '%s'",
		capitalize(productEnv), capitalize(c.environment),
	)
}

// environmentCompatible applies the deployment compatibility rules. A "both"
// requirement accepts any product, including one with no stated environment;
// a "both" product serves indoor and outdoor requirements.
func environmentCompatible(required, product string) bool {
	switch {
	case required == product:
		return true
	case required == domain.EnvironmentBoth:
		return product == domain.EnvironmentIndoor ||
			product == domain.EnvironmentOutdoor ||
			product == ""
	case product == domain.EnvironmentBoth:
		return required == domain.EnvironmentIndoor || required == domain.EnvironmentOutdoor
	}
	return false
}

// checkConnectivity passes when at least one requested token matches. Each
// matched token adds one connectivity increment.
func (e *ConstraintEvaluator) checkConnectivity(product *domain.Product, c *criteria) (*bool, float64, string) {
	if len(c.connectivity) == 0 {
		return nil, 0, "Connectivity not specified by user."
	}

	text := strings.ToLower(product.Connectivity)
	var matched []string
	var requested []string
	for _, criterion := range c.connectivity {
		requested = append(requested, criterion.token)
		if connectivityMatches(criterion.keywords, product.ConnectivityTokens, text) {
			matched = append(matched, strings.ToUpper(criterion.token))
		}
	}

	if len(matched) == 0 {
		return domain.Outcome(false), 0,
			"FAILED connectivity: No product match for user required options: " + strings.Join(requested, ", ")
	}

	score := e.weights.ConnectivityOption * float64(len(matched))
	sort.Strings(matched)
	return domain.Outcome(true), score, "Matched connectivity options: " + strings.Join(matched, ", ")
}

func connectivityMatches(keywords, tokens []string, text string) bool {
	for _, kw := range keywords {
		for _, token := range tokens {
			if token == kw {
				return true
			}
		}
		if text != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// checkPower passes when any requested label finds a keyword in the product's
// description or notes. The power increment is added once however many match.
func (e *ConstraintEvaluator) checkPower(product *domain.Product, c *criteria) (*bool, float64, string) {
	if len(c.power) == 0 {
		return nil, 0, "Power requirements not specified by user."
	}

	text := strings.ToLower(product.Description + " " + product.Notes)
	var found []string
	for _, criterion := range c.power {
		for _, p := range criterion.patterns {
			if p.Matches(text) {
				found = append(found, fmt.Sprintf("'%s' (for %s)", p.Keyword, criterion.label))
				break
			}
		}
	}

	if len(found) == 0 {
		return domain.Outcome(false), 0, fmt.Sprintf(
			"FAILED power: No product match for user required power options (%s) in product description/notes.",
			strings.Join(c.powerLabels, ", "),
		)
	}
	return domain.Outcome(true), e.weights.PowerKeyword,
		"Power requirement(s) met: Found " + strings.Join(dedupe(found), ", ")
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
