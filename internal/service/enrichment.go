package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/metrics"
	"github.com/punchamoorthee/claimops/internal/store"
)

const (
	rejectThreshold = 0.7
	reviewThreshold = 0.5
)

// FraudScorer produces a fraud score in [0, 1) for a claim.
type FraudScorer interface {
	Score(ctx context.Context, c *domain.Claim) (float64, error)
}

// RandomScorer simulates a fraud check: it waits a uniform delay in
// [MinDelay, MaxDelay) and returns a uniform score in [0, 1).
type RandomScorer struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func (r RandomScorer) Delay() time.Duration {
	if r.MaxDelay <= r.MinDelay {
		return r.MinDelay
	}
	return r.MinDelay + rand.N(r.MaxDelay-r.MinDelay)
}

func (r RandomScorer) Score(ctx context.Context, _ *domain.Claim) (float64, error) {
	if d := r.Delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return rand.Float64(), nil
}

// Assess maps a fraud score onto the claim's terminal state. A score at or
// below the review threshold keeps the intake status.
func Assess(score float64, status string) (newStatus string, valid bool) {
	switch {
	case score >= rejectThreshold:
		return domain.StatusRejected, false
	case score > reviewThreshold:
		return domain.StatusReview, true
	default:
		return status, true
	}
}

type Enricher struct {
	store  ClaimStore
	scorer FraudScorer
	log    zerolog.Logger
	now    func() time.Time
}

func NewEnricher(store ClaimStore, scorer FraudScorer, logger zerolog.Logger) *Enricher {
	return &Enricher{
		store:  store,
		scorer: scorer,
		log:    logger.With().Str("component", "enrichment").Logger(),
		now:    time.Now,
	}
}

// Process scores the claim and writes the outcome back in one update.
// Failures are logged and returned; there is no retry.
func (e *Enricher) Process(ctx context.Context, id int64) error {
	log := e.log.With().Int64("claim_id", id).Logger()
	log.Info().Msg("starting enrichment")

	err := e.process(ctx, id, log)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		metrics.EnrichmentTotal.WithLabelValues("not_found").Inc()
		log.Error().Err(err).Msg("claim vanished before enrichment")
	default:
		metrics.EnrichmentTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("enrichment failed")
	}
	return err
}

func (e *Enricher) process(ctx context.Context, id int64, log zerolog.Logger) error {
	claim, err := e.store.GetClaim(ctx, id)
	if err != nil {
		return fmt.Errorf("load claim %d: %w", id, err)
	}
	if claim.Processed() {
		metrics.EnrichmentTotal.WithLabelValues("skipped").Inc()
		log.Warn().Msg("claim already enriched, leaving terminal state untouched")
		return nil
	}

	score, err := e.scorer.Score(ctx, claim)
	if err != nil {
		return fmt.Errorf("score claim %d: %w", id, err)
	}

	status, valid := Assess(score, claim.Status)
	processedAt := e.now()
	claim.Status = status
	claim.FraudScore = &score
	claim.IsValid = &valid
	claim.ProcessedAt = &processedAt

	if err := e.store.UpdateClaim(ctx, claim); err != nil {
		return fmt.Errorf("update claim %d: %w", id, err)
	}

	metrics.EnrichmentTotal.WithLabelValues(outcome(score)).Inc()
	log.Info().
		Float64("fraud_score", score).
		Bool("valid", valid).
		Str("status", status).
		Msg("completed enrichment")
	return nil
}

func outcome(score float64) string {
	switch {
	case score >= rejectThreshold:
		return "rejected"
	case score > reviewThreshold:
		return "review"
	default:
		return "approved"
	}
}
