package api

import (
	"net/http"
	"time"

	"github.com/punchamoorthee/claimops/internal/models"
)

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	defer h.timeRequest(EndpointSummary, time.Now())

	summary, err := h.summary.GetSummary(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("error fetching summary")
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", "GET", "/api/claims/summary")
		return
	}
	h.respondJSON(w, http.StatusOK, summary, "GET", "/api/claims/summary")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.HealthResponse{Status: "UP", Timestamp: h.now()}, "GET", "/api/claims/health")
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.perf.Metrics(), "GET", "/api/claims/metrics")
}
