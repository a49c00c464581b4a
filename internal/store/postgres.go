package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/claimops/internal/domain"
)

// ErrNotFound is returned when a claim id does not exist.
var ErrNotFound = errors.New("claim not found")

// Schema is the claims table. EnsureSchema applies it idempotently.
const Schema = `
CREATE TABLE IF NOT EXISTS claims (
	id           BIGSERIAL PRIMARY KEY,
	type         TEXT NOT NULL,
	amount       NUMERIC(19, 2) NOT NULL CHECK (amount > 0),
	submitted_at TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	processed_at TIMESTAMPTZ,
	fraud_score  DOUBLE PRECISION,
	is_valid     BOOLEAN
)`

const claimColumns = "id, type, amount, submitted_at, status, processed_at, fraud_score, is_valid"

// claimRow is the storage representation of a claim.
type claimRow struct {
	ID          int64          `db:"id"`
	Type        string         `db:"type"`
	Amount      pgtype.Numeric `db:"amount"`
	SubmittedAt time.Time      `db:"submitted_at"`
	Status      string         `db:"status"`
	ProcessedAt *time.Time     `db:"processed_at"`
	FraudScore  *float64       `db:"fraud_score"`
	IsValid     *bool          `db:"is_valid"`
}

func (r claimRow) toDomain() domain.Claim {
	return domain.Claim{
		ID:          r.ID,
		Type:        r.Type,
		Amount:      decimal.NewFromBigInt(r.Amount.Int, r.Amount.Exp),
		Timestamp:   r.SubmittedAt,
		Status:      r.Status,
		ProcessedAt: r.ProcessedAt,
		FraudScore:  r.FraudScore,
		IsValid:     r.IsValid,
	}
}

// Numeric converts an exact decimal amount to its NUMERIC wire form.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

type PostgresStore struct {
	Db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresStore{Db: pool}, nil
}

func (s *PostgresStore) Close() {
	s.Db.Close()
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.Db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateClaim inserts c and sets its ID.
func (s *PostgresStore) CreateClaim(ctx context.Context, c *domain.Claim) error {
	err := s.Db.QueryRow(ctx,
		`INSERT INTO claims (type, amount, submitted_at, status, processed_at, fraud_score, is_valid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		c.Type, Numeric(c.Amount), c.Timestamp, c.Status, c.ProcessedAt, c.FraudScore, c.IsValid,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("claim insert failed: %w", err)
	}
	return nil
}

// GetClaim retrieves a single claim by ID.
func (s *PostgresStore) GetClaim(ctx context.Context, id int64) (*domain.Claim, error) {
	rows, err := s.Db.Query(ctx, "SELECT "+claimColumns+" FROM claims WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("claim query failed: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[claimRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("claim scan failed: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

// ListClaims returns every claim ordered by ID.
func (s *PostgresStore) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := s.Db.Query(ctx, "SELECT "+claimColumns+" FROM claims ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("claim list failed: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[claimRow])
	if err != nil {
		return nil, fmt.Errorf("claim list scan failed: %w", err)
	}

	claims := make([]domain.Claim, 0, len(records))
	for _, r := range records {
		claims = append(claims, r.toDomain())
	}
	return claims, nil
}

// UpdateClaim writes the mutable fields of c in a single statement.
func (s *PostgresStore) UpdateClaim(ctx context.Context, c *domain.Claim) error {
	tag, err := s.Db.Exec(ctx,
		`UPDATE claims SET status = $2, processed_at = $3, fraud_score = $4, is_valid = $5 WHERE id = $1`,
		c.ID, c.Status, c.ProcessedAt, c.FraudScore, c.IsValid,
	)
	if err != nil {
		return fmt.Errorf("claim update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
