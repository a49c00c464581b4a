package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/claimops/internal/domain"
)

type claimStore interface {
	CreateClaim(ctx context.Context, c *domain.Claim) error
	GetClaim(ctx context.Context, id int64) (*domain.Claim, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
	UpdateClaim(ctx context.Context, c *domain.Claim) error
}

// exerciseStore runs the contract every store implementation must satisfy.
func exerciseStore(t *testing.T, s claimStore) {
	t.Helper()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	c := &domain.Claim{
		Type:      "auto",
		Amount:    decimal.RequireFromString("500.00"),
		Timestamp: ts,
		Status:    "PENDING",
	}
	if err := s.CreateClaim(ctx, c); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("CreateClaim did not assign an ID")
	}

	got, err := s.GetClaim(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if got.Type != "auto" || got.Status != "PENDING" || !got.Amount.Equal(c.Amount) {
		t.Errorf("GetClaim = %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.ProcessedAt != nil || got.FraudScore != nil || got.IsValid != nil {
		t.Errorf("new claim has enrichment fields set: %+v", got)
	}

	processed := ts.Add(2 * time.Second)
	score, valid := 0.61, true
	got.Status = domain.StatusReview
	got.ProcessedAt = &processed
	got.FraudScore = &score
	got.IsValid = &valid
	if err := s.UpdateClaim(ctx, got); err != nil {
		t.Fatalf("UpdateClaim: %v", err)
	}

	updated, err := s.GetClaim(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetClaim after update: %v", err)
	}
	if updated.Status != domain.StatusReview || updated.FraudScore == nil || *updated.FraudScore != 0.61 {
		t.Errorf("update not persisted: %+v", updated)
	}
	if updated.IsValid == nil || !*updated.IsValid || updated.ProcessedAt == nil {
		t.Errorf("update not persisted: %+v", updated)
	}

	second := &domain.Claim{Type: "home", Amount: decimal.RequireFromString("10.25"), Timestamp: ts, Status: "PENDING"}
	if err := s.CreateClaim(ctx, second); err != nil {
		t.Fatalf("CreateClaim second: %v", err)
	}
	if second.ID == c.ID {
		t.Fatal("IDs must be unique")
	}

	all, err := s.ListClaims(ctx)
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	seen := map[int64]bool{}
	for _, cl := range all {
		seen[cl.ID] = true
	}
	if !seen[c.ID] || !seen[second.ID] {
		t.Errorf("ListClaims missing created claims: %+v", all)
	}

	if _, err := s.GetClaim(ctx, 1<<40); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetClaim unknown id = %v, want ErrNotFound", err)
	}
	ghost := &domain.Claim{ID: 1 << 40, Status: "REJECTED"}
	if err := s.UpdateClaim(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateClaim unknown id = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	c := &domain.Claim{Type: "auto", Amount: decimal.NewFromInt(1), Status: "PENDING"}
	s.CreateClaim(ctx, c)

	got, _ := s.GetClaim(ctx, c.ID)
	got.Status = "MUTATED"
	score := 0.9
	got.FraudScore = &score

	again, _ := s.GetClaim(ctx, c.ID)
	if again.Status != "PENDING" || again.FraudScore != nil {
		t.Errorf("store state leaked through returned pointer: %+v", again)
	}
}

func TestMemoryStoreUpdateOnlyTouchesMutableFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	c := &domain.Claim{Type: "auto", Amount: decimal.NewFromInt(100), Status: "PENDING"}
	s.CreateClaim(ctx, c)

	s.UpdateClaim(ctx, &domain.Claim{ID: c.ID, Type: "other", Amount: decimal.NewFromInt(1), Status: "REJECTED"})

	got, _ := s.GetClaim(ctx, c.ID)
	if got.Type != "auto" || !got.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("immutable fields changed: %+v", got)
	}
	if got.Status != "REJECTED" {
		t.Errorf("Status = %q, want REJECTED", got.Status)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_SOURCE")
	if dsn == "" {
		t.Skip("TEST_DB_SOURCE not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer s.Close()

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	exerciseStore(t, s)
}
