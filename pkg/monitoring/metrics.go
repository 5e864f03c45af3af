package monitoring

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Business actions recorded through RecordBusinessEvent
const (
	ActionUserRegistered = "user_registered"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionTokenRefreshed = "token_refreshed"
	ActionProfileUpdated = "profile_updated"
	ActionBidPlaced      = "bid_placed"
	ActionBidAmended     = "bid_amended"
	ActionBidAdjudicated = "bid_adjudicated"
	ActionListingsImport = "listings_imported"

	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeApproved = "approved"
	OutcomeDenied   = "denied"
)

// UnmatchedRoute labels requests that no route pattern matched
const UnmatchedRoute = "unmatched"

var initOnce sync.Once

// ensureInitialized lazily initializes metrics from the environment.
// ENABLE_OBSERVABILITY=false or OTEL_METRICS_ENABLED=false disables collection.
func ensureInitialized() {
	initOnce.Do(func() {
		if v := strings.ToLower(os.Getenv("ENABLE_OBSERVABILITY")); v == "false" || v == "0" || v == "no" {
			return
		}
		if v := strings.ToLower(os.Getenv("OTEL_METRICS_ENABLED")); v == "false" || v == "0" || v == "no" {
			return
		}
		serviceName := getEnvOrDefault("SERVICE_NAME", "cpt-bid-marketplace")
		if err := Initialize(DefaultConfig(serviceName)); err != nil {
			slog.Error("Failed to initialize metrics", "error", err)
		}
	})
}

// Handler exposes the metrics endpoint
func Handler() http.Handler {
	ensureInitialized()
	return otelHandler()
}

// HTTPMetricsMiddleware records request count and latency per route pattern.
// It must be installed with chi's Router.Use so the matched pattern is
// available once the handler returns; raw paths are never used as labels.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	ensureInitialized()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		otelRecordHTTPRequest(r.Method, routePattern(r), rw.statusCode, time.Since(start))
	})
}

// RecordExternalCall records a call to a backing store such as Redis
func RecordExternalCall(target, operation string, duration time.Duration, err error) {
	ensureInitialized()
	otelRecordExternalCall(target, operation, duration, err)
}

// RecordBusinessEvent records a marketplace event with its outcome
func RecordBusinessEvent(action, outcome string) {
	ensureInitialized()
	otelRecordBusinessEvent(action, outcome)
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return UnmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return UnmatchedRoute
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	return rw.ResponseWriter.Write(b)
}
