package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim statuses written by enrichment. Intake-time statuses are free text
// supplied by the caller.
const (
	StatusReview   = "REVIEW"
	StatusRejected = "REJECTED"
)

// Claim is a submitted insurance claim.
// ProcessedAt, FraudScore and IsValid are either all nil (unprocessed) or all set.
type Claim struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
	ProcessedAt *time.Time      `json:"processedAt"`
	FraudScore  *float64        `json:"fraudScore"`
	IsValid     *bool           `json:"isValid"`
}

// Processed reports whether enrichment has already run for the claim.
func (c *Claim) Processed() bool {
	return c.ProcessedAt != nil
}

// NewClaim is the intake input. A nil Timestamp defaults to the current time.
type NewClaim struct {
	Type      string
	Amount    decimal.Decimal
	Status    string
	Timestamp *time.Time
}

// ClaimSummary is the cacheable aggregate over all claims.
type ClaimSummary struct {
	TotalClaims    int64                      `json:"totalClaims"`
	ClaimsByStatus map[string]int64           `json:"claimsByStatus"`
	TotalAmount    decimal.Decimal            `json:"totalAmount"`
	AmountByStatus map[string]decimal.Decimal `json:"amountByStatus"`
	CacheHitCount  int64                      `json:"cacheHitCount"`
	CacheMissCount int64                      `json:"cacheMissCount"`
}

// PerformanceMetrics is a point-in-time view of request timings.
// AverageResponseTime is the unweighted mean of the per-endpoint averages.
type PerformanceMetrics struct {
	AverageResponseTime float64            `json:"averageResponseTime"`
	TotalRequests       int64              `json:"totalRequests"`
	EndpointAverages    map[string]float64 `json:"endpointAverages"`
}
