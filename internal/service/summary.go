package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/punchamoorthee/claimops/internal/domain"
)

// SummaryCacheKey is the single key the aggregate is cached under.
const SummaryCacheKey = "summary"

// CacheMetrics is the part of the metrics recorder the aggregator needs.
type CacheMetrics interface {
	RecordCacheMiss()
	CacheCounts() (hits, misses int64)
}

// SummaryCache is a generation-tagged cache for the aggregate.
type SummaryCache interface {
	Current(ctx context.Context) (uint64, error)
	Get(ctx context.Context, key string) (domain.ClaimSummary, bool, error)
	Put(ctx context.Context, key string, gen uint64, value domain.ClaimSummary) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// SummaryService serves the claim aggregate through a read-through cache.
//
// A recomputation is tagged with the generation read before the claims were
// loaded. Intake bumps the generation after persisting, so a snapshot that
// predates a creation is never served once that creation returns.
type SummaryService struct {
	store   ClaimStore
	cache   SummaryCache
	metrics CacheMetrics
	log     zerolog.Logger
	flight  singleflight.Group
}

func NewSummaryService(store ClaimStore, c SummaryCache, m CacheMetrics, logger zerolog.Logger) *SummaryService {
	return &SummaryService{
		store:   store,
		cache:   c,
		metrics: m,
		log:     logger.With().Str("component", "summary").Logger(),
	}
}

// GetSummary returns the cached aggregate, computing it on a miss.
func (s *SummaryService) GetSummary(ctx context.Context) (*domain.ClaimSummary, error) {
	cached, ok, err := s.cache.Get(ctx, SummaryCacheKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("summary cache read failed, recomputing")
	}
	if ok {
		return &cached, nil
	}

	gen, err := s.cache.Current(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("summary generation unavailable, computing uncached")
		summary, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		return &summary, nil
	}

	v, err, _ := s.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		detached := context.WithoutCancel(ctx)
		summary, err := s.compute(detached)
		if err != nil {
			return nil, err
		}
		stored, err := s.cache.Put(detached, SummaryCacheKey, gen, summary)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("summary cache write failed")
		case !stored:
			s.log.Debug().Msg("claims changed during summary computation, not caching")
		}
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	summary := v.(domain.ClaimSummary)
	return &summary, nil
}

// Invalidate drops the cached aggregate so the next read recomputes. It runs
// detached from ctx: the claim is already persisted when intake calls it.
func (s *SummaryService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), SummaryCacheKey); err != nil {
		s.log.Error().Err(err).Msg("summary cache invalidation failed")
		return
	}
	s.log.Debug().Msg("invalidated claim summary cache")
}

func (s *SummaryService) compute(ctx context.Context) (domain.ClaimSummary, error) {
	s.log.Info().Msg("computing claim summary (cache miss)")

	claims, err := s.store.ListClaims(ctx)
	if err != nil {
		return domain.ClaimSummary{}, fmt.Errorf("load claims for summary: %w", err)
	}

	summary := Aggregate(claims)
	summary.CacheHitCount, summary.CacheMissCount = s.metrics.CacheCounts()
	s.metrics.RecordCacheMiss()
	return summary, nil
}

// Aggregate groups claims by status. Amounts are summed as exact decimals.
func Aggregate(claims []domain.Claim) domain.ClaimSummary {
	out := domain.ClaimSummary{
		TotalClaims:    int64(len(claims)),
		ClaimsByStatus: make(map[string]int64),
		TotalAmount:    decimal.Zero,
		AmountByStatus: make(map[string]decimal.Decimal),
	}
	for _, c := range claims {
		out.ClaimsByStatus[c.Status]++
		out.TotalAmount = out.TotalAmount.Add(c.Amount)
		if sum, ok := out.AmountByStatus[c.Status]; ok {
			out.AmountByStatus[c.Status] = sum.Add(c.Amount)
		} else {
			out.AmountByStatus[c.Status] = c.Amount
		}
	}
	return out
}
