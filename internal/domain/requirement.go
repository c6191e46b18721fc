package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Requirement is a client requirement document. Every field is optional and an
// empty value means "unconstrained".
type Requirement struct {
	FrequencyBand       string
	Environment         string
	ApplicationType     string
	ApplicationSubtypes []string
	OtherSubtype        string
	Connectivity        map[string][]string // category -> connectivity tokens
	Power               []string            // power-source labels
	AdditionalDetails   string
}

// objectKeys are top-level keys whose value must be a JSON object (or null)
var objectKeys = []string{"clientInfo", "region", "deployment", "application", "connectivity"}

// stringKeys are top-level keys whose value must be a JSON string (or null)
var stringKeys = []string{"scale", "additionalDetails"}

// ValidateRequirementPayload rejects structurally invalid payloads at the system
// boundary. Nested anomalies are tolerated and normalized by ParseRequirement.
func ValidateRequirementPayload(raw map[string]interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty requirements payload", ErrInvalidRequest)
	}

	for _, key := range objectKeys {
		if v, ok := raw[key]; ok && v != nil {
			if _, isMap := v.(map[string]interface{}); !isMap {
				return fmt.Errorf("%w: %q must be an object", ErrInvalidRequest, key)
			}
		}
	}

	for _, key := range stringKeys {
		if v, ok := raw[key]; ok && v != nil {
			if _, isString := v.(string); !isString {
				return fmt.Errorf("%w: %q must be a string", ErrInvalidRequest, key)
			}
		}
	}

	if v, ok := raw["power"]; ok && v != nil {
		items, isList := v.([]interface{})
		if !isList {
			return fmt.Errorf("%w: \"power\" must be a list of strings", ErrInvalidRequest)
		}
		for _, item := range items {
			if _, isString := item.(string); !isString {
				return fmt.Errorf("%w: \"power\" must be a list of strings", ErrInvalidRequest)
			}
		}
	}

	return nil
}

// DecodeRequirementPayload parses a JSON document into a raw payload map.
func DecodeRequirementPayload(data []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return raw, nil
}

// ParseRequirement builds a Requirement from a decoded JSON payload. Values of an
// unexpected type are treated as unspecified rather than rejected.
func ParseRequirement(raw map[string]interface{}) Requirement {
	var req Requirement

	region := asMap(raw["region"])
	req.FrequencyBand = asString(region["frequencyBand"])

	deployment := asMap(raw["deployment"])
	req.Environment = asString(deployment["environment"])

	application := asMap(raw["application"])
	req.ApplicationType = asString(application["type"])
	req.ApplicationSubtypes = asStringList(application["subtypes"])
	req.OtherSubtype = asString(application["otherSubtype"])

	connectivity := asMap(raw["connectivity"])
	for category, tokens := range asMap(connectivity["elaborate"]) {
		list := asStringList(tokens)
		if len(list) == 0 {
			continue
		}
		if req.Connectivity == nil {
			req.Connectivity = make(map[string][]string)
		}
		req.Connectivity[category] = list
	}

	req.Power = asStringList(raw["power"])
	req.AdditionalDetails = asString(raw["additionalDetails"])

	return req
}

// ConnectivityTokens flattens every category into a sorted, de-duplicated list of
// lower-cased tokens.
func (r Requirement) ConnectivityTokens() []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, list := range r.Connectivity {
		for _, token := range list {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			tokens = append(tokens, token)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// PowerLabels returns the non-blank power labels in request order.
func (r Requirement) PowerLabels() []string {
	var labels []string
	for _, label := range r.Power {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func asStringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
