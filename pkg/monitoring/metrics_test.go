package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHandler(t *testing.T) {
	body := scrape(t)
	assert.NotEmpty(t, body)
}

func TestHandler_ExportsRuntimeMetrics(t *testing.T) {
	body := scrape(t)
	assert.Contains(t, body, `otel_scope_name="go.opentelemetry.io/contrib/instrumentation/runtime"`)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/api/bid/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bid/5b0f6a56-1c1e-4a43-9d5c-0d1f2c0e9a11", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := scrape(t)
	assert.Contains(t, body, "http_requests")
	assert.Contains(t, body, `/api/bid/{id}`)
	assert.NotContains(t, body, "5b0f6a56-1c1e-4a43-9d5c-0d1f2c0e9a11")
}

func TestHTTPMetricsMiddleware_Unmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/path", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, scrape(t), UnmatchedRoute)
}

func TestRouteContextMissing(t *testing.T) {
	assert.Equal(t, UnmatchedRoute, routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestRecordExternalCall(t *testing.T) {
	RecordExternalCall("redis", "token_revoked", 2*time.Millisecond, nil)
	RecordExternalCall("redis", "token_revoked", time.Millisecond, errors.New("connection refused"))

	body := scrape(t)
	assert.Contains(t, body, "external_calls")
	assert.Contains(t, body, "external_call_errors")
}

func TestRecordBusinessEvent(t *testing.T) {
	RecordBusinessEvent(ActionBidPlaced, OutcomeSuccess)
	RecordBusinessEvent(ActionBidAdjudicated, OutcomeDenied)

	body := scrape(t)
	assert.Contains(t, body, "business_events")
	assert.Contains(t, body, ActionBidAdjudicated)
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"api-key=secret", map[string]string{"api-key": "secret"}},
		{" a = 1 , b=2,broken", map[string]string{"a": "1", "b": "2"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseHeaders(tt.in), tt.in)
	}
}
