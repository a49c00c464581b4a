package models

import (
	"time"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateClaimRequest is the payload from the client.
type CreateClaimRequest struct {
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// ToDomain converts the wire request into intake input.
func (r CreateClaimRequest) ToDomain() domain.NewClaim {
	return domain.NewClaim{
		Type:      r.Type,
		Amount:    r.Amount,
		Status:    r.Status,
		Timestamp: r.Timestamp,
	}
}

// ClaimResponse is the canonical claim representation returned by the API.
type ClaimResponse struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
	ProcessedAt *time.Time      `json:"processedAt"`
	FraudScore  *float64        `json:"fraudScore"`
	IsValid     *bool           `json:"isValid"`
}

// NewClaimResponse maps a domain claim onto its wire form.
func NewClaimResponse(c *domain.Claim) ClaimResponse {
	return ClaimResponse{
		ID:          c.ID,
		Type:        c.Type,
		Amount:      c.Amount,
		Timestamp:   c.Timestamp,
		Status:      c.Status,
		ProcessedAt: c.ProcessedAt,
		FraudScore:  c.FraudScore,
		IsValid:     c.IsValid,
	}
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
