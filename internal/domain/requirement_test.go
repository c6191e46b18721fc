package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) map[string]interface{} {
	t.Helper()
	raw, err := DecodeRequirementPayload([]byte(doc))
	require.NoError(t, err)
	return raw
}

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Requirement
	}{
		{
			name: "full document",
			doc: `{
				"region": {"frequencyBand": " US915 "},
				"deployment": {"environment": "Outdoor"},
				"application": {"type": "Agriculture", "subtypes": ["Soil", "Weather"], "otherSubtype": "Cattle"},
				"connectivity": {"elaborate": {"lorawanType": ["LoRaWAN"], "cellular": ["LTE-M"]}},
				"power": ["Solar Power"],
				"additionalDetails": "remote farm"
			}`,
			want: Requirement{
				FrequencyBand:       "US915",
				Environment:         "Outdoor",
				ApplicationType:     "Agriculture",
				ApplicationSubtypes: []string{"Soil", "Weather"},
				OtherSubtype:        "Cattle",
				Connectivity:        map[string][]string{"lorawanType": {"LoRaWAN"}, "cellular": {"LTE-M"}},
				Power:               []string{"Solar Power"},
				AdditionalDetails:   "remote farm",
			},
		},
		{
			name: "non-string frequency band is unspecified",
			doc:  `{"region": {"frequencyBand": 5}}`,
			want: Requirement{},
		},
		{
			name: "non-object elaborate is unspecified",
			doc:  `{"connectivity": {"elaborate": "x"}}`,
			want: Requirement{},
		},
		{
			name: "non-string connectivity tokens are dropped",
			doc:  `{"connectivity": {"elaborate": {"radio": [1, "lorawan"]}}}`,
			want: Requirement{Connectivity: map[string][]string{"radio": {"lorawan"}}},
		},
		{
			name: "empty connectivity categories are skipped",
			doc:  `{"connectivity": {"elaborate": {"radio": [], "cellular": [" "]}}}`,
			want: Requirement{},
		},
		{
			name: "string subtypes are unspecified",
			doc:  `{"application": {"subtypes": "Soil"}}`,
			want: Requirement{},
		},
		{
			name: "null deployment",
			doc:  `{"deployment": null}`,
			want: Requirement{},
		},
		{
			name: "blank power labels are dropped",
			doc:  `{"power": [" ", "Solar Power", 3]}`,
			want: Requirement{Power: []string{"Solar Power"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequirement(decode(t, tt.doc))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequirement_ConnectivityTokens(t *testing.T) {
	tests := []struct {
		name         string
		connectivity map[string][]string
		want         []string
	}{
		{
			name: "dedupes and lower-cases across categories",
			connectivity: map[string][]string{
				"a": {"LoRaWAN", "BLE"},
				"b": {"lorawan", " wifi "},
			},
			want: []string{"ble", "lorawan", "wifi"},
		},
		{
			name:         "blank tokens are ignored",
			connectivity: map[string][]string{"a": {"  ", "LTE"}},
			want:         []string{"lte"},
		},
		{
			name: "nothing requested",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Requirement{Connectivity: tt.connectivity}
			assert.Equal(t, tt.want, req.ConnectivityTokens())
		})
	}
}

func TestRequirement_PowerLabels(t *testing.T) {
	req := Requirement{Power: []string{" Solar Power ", "", "AC Power", "  "}}
	assert.Equal(t, []string{"Solar Power", "AC Power"}, req.PowerLabels())

	assert.Nil(t, Requirement{}.PowerLabels())
}

func TestValidateRequirementPayload(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"minimal document", `{"scale": "Large"}`, false},
		{"null sections are accepted", `{"region": null, "power": null, "scale": null}`, false},
		{"nested anomalies are tolerated", `{"region": {"frequencyBand": 5}}`, false},
		{"empty document", `{}`, true},
		{"region is not an object", `{"region": "US915"}`, true},
		{"connectivity is a list", `{"connectivity": ["lorawan"]}`, true},
		{"scale is not a string", `{"scale": 10}`, true},
		{"power is a string", `{"power": "Solar Power"}`, true},
		{"power holds a number", `{"power": ["Solar Power", 1]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequirementPayload(decode(t, tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecodeRequirementPayload(t *testing.T) {
	t.Run("malformed JSON", func(t *testing.T) {
		_, err := DecodeRequirementPayload([]byte(`{nope`))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("top level is not an object", func(t *testing.T) {
		_, err := DecodeRequirementPayload([]byte(`["region"]`))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("object", func(t *testing.T) {
		raw, err := DecodeRequirementPayload([]byte(`{"scale": "Small"}`))
		require.NoError(t, err)
		assert.Equal(t, "Small", raw["scale"])
	})
}
