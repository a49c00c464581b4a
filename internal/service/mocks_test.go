package service

import (
	"context"
	"errors"
	"sync"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/worker"
)

var errStoreDown = errors.New("connection refused")

// manualRunner records submitted tasks and runs them only when told to.
type manualRunner struct {
	mu    sync.Mutex
	tasks []func(ctx context.Context)
	err   error
}

func (r *manualRunner) Submit(fn func(ctx context.Context)) (*worker.Task, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	r.tasks = append(r.tasks, fn)
	r.mu.Unlock()
	return nil, nil
}

func (r *manualRunner) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *manualRunner) runAll(ctx context.Context) {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = nil
	r.mu.Unlock()
	for _, fn := range tasks {
		fn(ctx)
	}
}

// fixedScorer returns a preset score without delay.
type fixedScorer struct {
	score float64
	err   error
}

func (f fixedScorer) Score(context.Context, *domain.Claim) (float64, error) {
	return f.score, f.err
}

// recordingProcessor notes which ids were processed.
type recordingProcessor struct {
	mu  sync.Mutex
	ids []int64
}

func (p *recordingProcessor) Process(_ context.Context, id int64) error {
	p.mu.Lock()
	p.ids = append(p.ids, id)
	p.mu.Unlock()
	return nil
}

// countingInvalidator counts invalidations.
type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

// MockStore implements ClaimStore with optional per-method overrides.
type MockStore struct {
	CreateFunc func(ctx context.Context, c *domain.Claim) error
	GetFunc    func(ctx context.Context, id int64) (*domain.Claim, error)
	ListFunc   func(ctx context.Context) ([]domain.Claim, error)
	UpdateFunc func(ctx context.Context, c *domain.Claim) error
}

func (m *MockStore) CreateClaim(ctx context.Context, c *domain.Claim) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *MockStore) GetClaim(ctx context.Context, id int64) (*domain.Claim, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errStoreDown
}

func (m *MockStore) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) UpdateClaim(ctx context.Context, c *domain.Claim) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	return nil
}
