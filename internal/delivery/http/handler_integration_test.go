package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShivamTripathi028/rak-recommender-project/config"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/rules"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}
}

// stubRecommender is a hand-written Recommender for handler tests
type stubRecommender struct {
	status  usecase.Status
	topN    int
	result  []domain.Recommendation
	err     error
	gotReq  *domain.Requirement
	gotTopN int
	called  bool
}

func (s *stubRecommender) Recommend(ctx context.Context, req *domain.Requirement, topN int) ([]domain.Recommendation, error) {
	s.called = true
	s.gotReq = req
	s.gotTopN = topN
	return s.result, s.err
}

func (s *stubRecommender) Status() usecase.Status { return s.status }

func (s *stubRecommender) DefaultTopN() int { return s.topN }

func setupTestRouter(rec Recommender) *gin.Engine {
	handler := NewHandler(rec, zerolog.Nop())
	return SetupRouter(testConfig(), handler, zerolog.Nop())
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		rec        Recommender
		wantStatus string
		wantReason string
	}{
		{
			name:       "ready",
			rec:        &stubRecommender{status: usecase.Status{Ready: true, Products: 5, Embedded: 5}},
			wantStatus: "healthy",
		},
		{
			name:       "initialization failed",
			rec:        &stubRecommender{status: usecase.Status{Reason: "catalog load failed"}},
			wantStatus: "unhealthy",
			wantReason: "catalog load failed",
		},
		{
			name:       "no recommender",
			rec:        nil,
			wantStatus: "unhealthy",
			wantReason: "Recommender not initialized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(tt.rec)

			req, _ := http.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
			}

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantStatus, response["status"])
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, response["reason"])
			}
		})
	}

	t.Run("reports degraded mode", func(t *testing.T) {
		router := setupTestRouter(&stubRecommender{status: usecase.Status{Ready: true, Degraded: true}})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["degraded"])
		assert.NotContains(t, response, "reason")
	})

	t.Run("reports why product embeddings are missing", func(t *testing.T) {
		status := usecase.Status{Ready: true, Degraded: true, Reason: "product embeddings unavailable", Products: 4}
		router := setupTestRouter(&stubRecommender{status: status})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, true, response["degraded"])
		assert.Equal(t, "product embeddings unavailable", response["reason"])
		assert.Equal(t, 0.0, response["embedded"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(&stubRecommender{})

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestRecommendEndpoint covers request validation and error mapping
func TestRecommendEndpoint(t *testing.T) {
	t.Run("passes the parsed requirement and default top_n", func(t *testing.T) {
		rec := &stubRecommender{topN: 3, result: []domain.Recommendation{{ProductID: "P2", FinalScore: 11}}}
		router := setupTestRouter(rec)

		w := postJSON(router, "/recommend", `{"region":{"frequencyBand":"US915"},"power":["Solar Power"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, rec.gotReq)
		assert.Equal(t, "US915", rec.gotReq.FrequencyBand)
		assert.Equal(t, []string{"Solar Power"}, rec.gotReq.Power)
		assert.Equal(t, 3, rec.gotTopN)

		var response []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response, 1)
		assert.Equal(t, "P2", response[0]["Product_ID"])
	})

	t.Run("honours top_n query parameter", func(t *testing.T) {
		rec := &stubRecommender{topN: 3, result: []domain.Recommendation{}}
		router := setupTestRouter(rec)

		w := postJSON(router, "/api/v1/recommend?top_n=0", `{"scale":"Large"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, rec.gotTopN)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	badRequests := []struct {
		name string
		path string
		body string
	}{
		{"invalid JSON", "/recommend", `{invalid json}`},
		{"array body", "/recommend", `[1, 2]`},
		{"null body", "/recommend", `null`},
		{"empty object", "/recommend", `{}`},
		{"region not an object", "/recommend", `{"region":"US915"}`},
		{"power not a list", "/recommend", `{"power":"Solar"}`},
		{"power item not a string", "/recommend", `{"power":["Solar", 3]}`},
		{"scale not a string", "/recommend", `{"scale":10}`},
		{"negative top_n", "/recommend?top_n=-1", `{"scale":"Large"}`},
		{"non-numeric top_n", "/recommend?top_n=three", `{"scale":"Large"}`},
	}
	for _, tt := range badRequests {
		t.Run("returns 400 for "+tt.name, func(t *testing.T) {
			rec := &stubRecommender{topN: 3}
			router := setupTestRouter(rec)

			w := postJSON(router, tt.path, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if rec.called {
				t.Error("recommender should not be called for an invalid request")
			}

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response["error"])
		})
	}

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not ready", domain.ErrNotReady, http.StatusServiceUnavailable},
		{"invalid top_n from service", domain.ErrInvalidTopN, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range errorCases {
		t.Run("maps "+tt.name, func(t *testing.T) {
			router := setupTestRouter(&stubRecommender{topN: 3, err: tt.err})

			w := postJSON(router, "/recommend", `{"scale":"Large"}`)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	t.Run("returns 503 without a recommender", func(t *testing.T) {
		router := setupTestRouter(nil)
		w := postJSON(router, "/recommend", `{"scale":"Large"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("validates HTTP method", func(t *testing.T) {
		router := setupTestRouter(&stubRecommender{})

		for _, method := range []string{"GET", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/api/v1/recommend", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestRecommendWithService runs requests through a real recommendation service
func TestRecommendWithService(t *testing.T) {
	r, err := rules.Default()
	require.NoError(t, err)

	catalog := &domain.Catalog{
		Products: []domain.Product{
			{ID: "P1", Name: "Indoor Hub", Description: "indoor gateway", Environment: "indoor", Regions: []string{"eu868"}},
			{ID: "P2", Name: "Field Gateway", Description: "outdoor solar gateway", Notes: "PoE", Environment: "outdoor", Regions: []string{"us915"}},
		},
	}
	service := usecase.NewRecommendationService(context.Background(), catalog, r, nil, usecase.RecommendationConfig{}, zerolog.Nop())
	router := setupTestRouter(service)

	t.Run("ranks the matching product", func(t *testing.T) {
		w := postJSON(router, "/api/v1/recommend", `{"region":{"frequencyBand":"US915"},"deployment":{"environment":"Outdoor"}}`)
		require.Equal(t, http.StatusOK, w.Code)

		var response []domain.Recommendation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response, 1)
		assert.Equal(t, "P2", response[0].ProductID)
		assert.Equal(t, 8.0, response[0].FinalScore)
		assert.Contains(t, response[0].Explanation, "Text Similarity: 0.00 (Query empty or model issue)")
	})

	t.Run("health reports degraded", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, true, response["degraded"])
		assert.Equal(t, float64(2), response["products"])
	})

	t.Run("unavailable service answers 503", func(t *testing.T) {
		unavailable := usecase.NewUnavailableService(errors.New("catalog missing"), zerolog.Nop())
		w := postJSON(setupTestRouter(unavailable), "/recommend", `{"scale":"Large"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(&stubRecommender{status: usecase.Status{Ready: true}})

	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:5173")
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("X-Request-ID header not set")
	}
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter(&stubRecommender{})
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
