package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

const testProducts = `Product_ID,Product_Name,Description_And_Application,Notes,Connectivity,Deployment_Environment,Region Support
P1,Indoor Hub,Indoor gateway for offices,,"LoRaWAN, Wi-Fi",Indoor,EU868
P2,Field Gateway,Outdoor gateway for farms,Solar kit available,"LoRaWAN, LTE",Outdoor,"US915, AU915"
`

// setupWorkspace writes a catalog into a temp dir and points the config at it
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	files := map[string]string{
		"products.csv": testProducts,
		"features.csv": "Feature_ID,Feature_Name,Feature_Description\n",
		"mapping.csv":  "Product_ID,Feature_ID\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	t.Setenv("RECOMMENDER_CATALOG_PRODUCT_FILE", filepath.Join(dir, "products.csv"))
	t.Setenv("RECOMMENDER_CATALOG_FEATURE_FILE", filepath.Join(dir, "features.csv"))
	t.Setenv("RECOMMENDER_CATALOG_MAPPING_FILE", filepath.Join(dir, "mapping.csv"))
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRecommend_Listing(t *testing.T) {
	dir := setupWorkspace(t)
	reqPath := filepath.Join(dir, "req.json")
	require.NoError(t, os.WriteFile(reqPath, []byte(`{"region":{"frequencyBand":"US915"}}`), 0o600))

	out, err := execute(t, "", "--requirements", reqPath, "--offline")
	require.NoError(t, err)

	assert.Contains(t, out, "Product ID: P2")
	assert.Contains(t, out, "  Name: Field Gateway")
	assert.Contains(t, out, "  Final Score: 5.00")
	assert.Contains(t, out, "    - Matched frequency band: US915")
	assert.NotContains(t, out, "Product ID: P1")
}

func TestRecommend_JSONFromStdin(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, `{"connectivity":{"elaborate":{"lorawanType":["lorawan"]}}}`,
		"-r", "-", "--json", "--offline", "--top-n", "1")
	require.NoError(t, err)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "P1", recs[0].ProductID)
	assert.Equal(t, 2.0, recs[0].FinalScore)
}

func TestRecommend_NoMatches(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, `{"region":{"frequencyBand":"IN865"}}`, "-r", "-", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "No suitable products found based on the criteria.")
}

func TestRecommend_Errors(t *testing.T) {
	setupWorkspace(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"missing flag", "", []string{"--offline"}},
		{"missing file", "", []string{"-r", "absent.json", "--offline"}},
		{"invalid JSON", "{nope", []string{"-r", "-", "--offline"}},
		{"empty document", "{}", []string{"-r", "-", "--offline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			assert.Error(t, err)
		})
	}

	t.Run("catalog not loadable", func(t *testing.T) {
		t.Setenv("RECOMMENDER_CATALOG_PRODUCT_FILE", "absent.csv")
		_, err := execute(t, `{"scale":"Large"}`, "-r", "-", "--offline")
		assert.ErrorIs(t, err, domain.ErrNotReady)
	})
}
