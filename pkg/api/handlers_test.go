package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	janeDoe = catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"}
	johnRoe = catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "John Roe"}
	lee     = catalog.Record{Prefix: "CS", Number: "1336", ProfessorName: "Lee"}
)

func setupTestRouter(cfg *config.Config) *gin.Engine {
	b := graph.NewBuilder()
	b.Add(janeDoe)
	b.Add(johnRoe)
	b.Add(lee)
	live := config.NewLive(cfg, "")
	return NewRouter(NewHandlers(suggest.NewCompleter(b.Build()), live), live)
}

func get(router *gin.Engine, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAutocomplete(t *testing.T) {
	router := setupTestRouter(config.DefaultConfig())

	testCases := []struct {
		query       string
		expected    []catalog.Record
		description string
	}{
		{"input=cs1200%20j", []catalog.Record{janeDoe, johnRoe}, "Free text"},
		{"input=cs1200%20j&prefix=MATH&limit=1", []catalog.Record{janeDoe, johnRoe}, "Input wins over fields"},
		{"prefix=CS&number=1200&professorName=Jane%20Doe&limit=10", []catalog.Record{johnRoe}, "Fields exclude the query itself"},
		{"prefix=CS&number=1200&professorName=Jane%20Doe&limit=1", []catalog.Record{johnRoe}, "Fields with limit"},
		{"input=zz", []catalog.Record{}, "No match is an empty list"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			w := get(router, "/api/autocomplete?"+tc.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp AutocompleteResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, MessageSuccess, resp.Message)
			assert.Equal(t, tc.expected, resp.Data)
		})
	}
}

func TestHandleAutocomplete_EmptyDataIsArray(t *testing.T) {
	router := setupTestRouter(config.DefaultConfig())
	w := get(router, "/api/autocomplete?input=zz", nil)
	assert.JSONEq(t, `{"message":"success","data":[]}`, w.Body.String())
}

func TestHandleAutocomplete_BadRequest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxInput = 10
	router := setupTestRouter(cfg)

	for _, query := range []string{
		"",
		"limit=5",
		"prefix=CS",
		"prefix=CS&limit=abc",
		"prefix=CS&limit=0",
		"prefix=%20%20&limit=5",
		"input=" + strings.Repeat("a", 11),
	} {
		t.Run(query, func(t *testing.T) {
			w := get(router, "/api/autocomplete?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"message":"Incorrect query parameters"}`, w.Body.String())
		})
	}
}

func TestHandleAutocomplete_LimitCapped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxLimit = 1
	router := setupTestRouter(cfg)

	w := get(router, "/api/autocomplete?input=cs", nil)
	var resp AutocompleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter(config.DefaultConfig())

	w := get(router, "/health", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = get(router, "/health", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestHandleHealth(t *testing.T) {
	router := setupTestRouter(config.DefaultConfig())
	w := get(router, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Graph["records"])
	assert.Equal(t, 9, resp.Graph["record_nodes"], "three keys per record")
}

func TestRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 2
	router := setupTestRouter(cfg)

	assert.Equal(t, http.StatusOK, get(router, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, get(router, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/health", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(config.DefaultConfig())
	get(router, "/api/autocomplete?input=cs", nil)

	w := get(router, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "courseserve_search_queries_total")
	assert.Contains(t, w.Body.String(), "courseserve_http_requests_total")

	cfg := config.DefaultConfig()
	cfg.HTTP.EnableMetrics = false
	assert.Equal(t, http.StatusNotFound, get(setupTestRouter(cfg), "/metrics", nil).Code)
}
