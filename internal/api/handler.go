package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/models"
	"github.com/punchamoorthee/claimops/internal/service"
	"github.com/punchamoorthee/claimops/internal/store"
)

// Endpoint keys used for request-time bookkeeping.
const (
	EndpointCreateClaim = "POST /api/claims"
	EndpointSummary     = "GET /api/claims/summary"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})
)

type ClaimService interface {
	CreateClaim(ctx context.Context, in domain.NewClaim) (*domain.Claim, error)
	GetClaim(ctx context.Context, id int64) (*domain.Claim, error)
}

type SummaryService interface {
	GetSummary(ctx context.Context) (*domain.ClaimSummary, error)
}

type PerformanceRecorder interface {
	RecordRequestTime(endpoint string, durationMs int64)
	Metrics() domain.PerformanceMetrics
}

type Handler struct {
	claims  ClaimService
	summary SummaryService
	perf    PerformanceRecorder
	log     zerolog.Logger
	now     func() time.Time
}

func NewHandler(claims ClaimService, summary SummaryService, perf PerformanceRecorder, logger zerolog.Logger) *Handler {
	return &Handler{
		claims:  claims,
		summary: summary,
		perf:    perf,
		log:     logger.With().Str("component", "api").Logger(),
		now:     time.Now,
	}
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	defer h.timeRequest(EndpointCreateClaim, time.Now())

	var req models.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "POST", "/api/claims")
		return
	}

	claim, err := h.claims.CreateClaim(r.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.respondError(w, http.StatusBadRequest, err.Error(), "POST", "/api/claims")
			return
		}
		h.log.Error().Err(err).Msg("error creating claim")
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", "POST", "/api/claims")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/claims/%d", claim.ID))
	h.respondJSON(w, http.StatusCreated, models.NewClaimResponse(claim), "POST", "/api/claims")
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid claim id", "GET", "/api/claims/{id}")
		return
	}

	claim, err := h.claims.GetClaim(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Claim not found", "GET", "/api/claims/{id}")
			return
		}
		h.log.Error().Err(err).Int64("claim_id", id).Msg("error loading claim")
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", "GET", "/api/claims/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, models.NewClaimResponse(claim), "GET", "/api/claims/{id}")
}

// timeRequest records the elapsed time since start, on success and failure alike.
func (h *Handler) timeRequest(endpoint string, start time.Time) {
	h.perf.RecordRequestTime(endpoint, time.Since(start).Milliseconds())
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Str("endpoint", endpoint).Msg("error encoding response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, models.ErrorResponse{Error: msg}, method, endpoint)
}
