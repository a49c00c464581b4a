package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires the claim endpoints, the Prometheus scrape endpoint and the
// request logging middleware.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	claims := r.PathPrefix("/api/claims").Subrouter()
	claims.HandleFunc("", h.CreateClaim).Methods("POST")
	claims.HandleFunc("/summary", h.GetSummary).Methods("GET")
	claims.HandleFunc("/health", h.Health).Methods("GET")
	claims.HandleFunc("/metrics", h.GetMetrics).Methods("GET")
	claims.HandleFunc("/{id:[0-9]+}", h.GetClaim).Methods("GET")

	r.Use(loggingMiddleware(h.log))
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
