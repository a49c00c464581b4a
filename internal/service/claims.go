package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/worker"
)

// Amounts are stored as NUMERIC(19,2).
const amountScale = 2

var maxAmount = decimal.New(1, 17)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a constraint violation on intake input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ClaimStore is the durable record store for claims.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c *domain.Claim) error
	GetClaim(ctx context.Context, id int64) (*domain.Claim, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
	UpdateClaim(ctx context.Context, c *domain.Claim) error
}

// TaskRunner schedules background work without waiting for it.
type TaskRunner interface {
	Submit(fn func(ctx context.Context)) (*worker.Task, error)
}

// SummaryInvalidator drops the cached aggregate.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// ClaimProcessor enriches a persisted claim.
type ClaimProcessor interface {
	Process(ctx context.Context, id int64) error
}

type ClaimService struct {
	store    ClaimStore
	runner   TaskRunner
	enricher ClaimProcessor
	summary  SummaryInvalidator
	log      zerolog.Logger
	now      func() time.Time
}

func NewClaimService(store ClaimStore, runner TaskRunner, enricher ClaimProcessor, summary SummaryInvalidator, logger zerolog.Logger) *ClaimService {
	return &ClaimService{
		store:    store,
		runner:   runner,
		enricher: enricher,
		summary:  summary,
		log:      logger.With().Str("component", "intake").Logger(),
		now:      time.Now,
	}
}

// CreateClaim validates and persists a new claim, invalidates the cached
// summary, then schedules enrichment. It returns the unprocessed claim
// without waiting for enrichment.
func (s *ClaimService) CreateClaim(ctx context.Context, in domain.NewClaim) (*domain.Claim, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	ts := s.now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	claim := &domain.Claim{
		Type:      in.Type,
		Amount:    in.Amount,
		Timestamp: ts,
		Status:    in.Status,
	}

	s.log.Info().
		Str("type", claim.Type).
		Str("amount", claim.Amount.String()).
		Str("status", claim.Status).
		Msg("creating claim")

	if err := s.store.CreateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist claim: %w", err)
	}

	s.summary.Invalidate(ctx)

	if claim.ID == 0 {
		s.log.Error().Msg("claim saved without an id, skipping enrichment")
		return claim, nil
	}

	id := claim.ID
	if _, err := s.runner.Submit(func(taskCtx context.Context) {
		// Errors are logged by the enricher; nothing reaches the caller.
		_ = s.enricher.Process(taskCtx, id)
	}); err != nil {
		s.log.Error().Err(err).Int64("claim_id", id).Msg("could not schedule enrichment")
	}

	return claim, nil
}

// GetClaim returns a claim by id.
func (s *ClaimService) GetClaim(ctx context.Context, id int64) (*domain.Claim, error) {
	return s.store.GetClaim(ctx, id)
}

func validate(in domain.NewClaim) error {
	if strings.TrimSpace(in.Type) == "" {
		return &ValidationError{Field: "type", Message: "claim type is required"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be greater than 0"}
	}
	if !in.Amount.Equal(in.Amount.Round(amountScale)) {
		return &ValidationError{Field: "amount", Message: "amount must have at most 2 decimal places"}
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return &ValidationError{Field: "amount", Message: "amount is too large"}
	}
	if strings.TrimSpace(in.Status) == "" {
		return &ValidationError{Field: "status", Message: "status is required"}
	}
	return nil
}
