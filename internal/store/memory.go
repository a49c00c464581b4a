package store

import (
	"context"
	"sort"
	"sync"

	"github.com/punchamoorthee/claimops/internal/domain"
)

// MemoryStore keeps claims in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	claims map[int64]domain.Claim
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claims: make(map[int64]domain.Claim), nextID: 1}
}

func (s *MemoryStore) CreateClaim(_ context.Context, c *domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextID
	s.nextID++
	s.claims[c.ID] = clone(*c)
	return nil
}

func (s *MemoryStore) GetClaim(_ context.Context, id int64) (*domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(c)
	return &out, nil
}

func (s *MemoryStore) ListClaims(_ context.Context) ([]domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateClaim(_ context.Context, c *domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.claims[c.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Status = c.Status
	cur.ProcessedAt = c.ProcessedAt
	cur.FraudScore = c.FraudScore
	cur.IsValid = c.IsValid
	s.claims[c.ID] = clone(cur)
	return nil
}

// Delete removes a claim. Not part of the service contract; lets tests
// simulate a claim disappearing before enrichment.
func (s *MemoryStore) Delete(id int64) {
	s.mu.Lock()
	delete(s.claims, id)
	s.mu.Unlock()
}

// clone copies the pointer fields so callers never share state with the map.
func clone(c domain.Claim) domain.Claim {
	if c.ProcessedAt != nil {
		t := *c.ProcessedAt
		c.ProcessedAt = &t
	}
	if c.FraudScore != nil {
		f := *c.FraudScore
		c.FraudScore = &f
	}
	if c.IsValid != nil {
		v := *c.IsValid
		c.IsValid = &v
	}
	return c
}
