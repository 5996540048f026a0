// Package memory holds process-local implementations of the store ports.
// They back local development without MongoDB and the service and API
// tests. A single mutex per repository makes every method atomic.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

type SweetRepository struct {
	mu     sync.Mutex
	order  []string
	sweets map[string]domain.Sweet
}

func NewSweetRepository() *SweetRepository {
	return &SweetRepository{sweets: make(map[string]domain.Sweet)}
}

func (r *SweetRepository) Create(_ context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := domain.Sweet{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
	}
	r.sweets[s.ID] = s
	r.order = append(r.order, s.ID)
	return &s, nil
}

func (r *SweetRepository) FindAll(ctx context.Context) ([]domain.Sweet, error) {
	return r.Search(ctx, domain.SweetFilter{})
}

func (r *SweetRepository) Search(_ context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Sweet, 0, len(r.order))
	for _, id := range r.order {
		if s := r.sweets[id]; filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SweetRepository) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	return &s, nil
}

func (r *SweetRepository) Update(_ context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sweets[id]; !ok {
		return nil, domain.ErrSweetNotFound
	}
	s := domain.Sweet{
		ID:       id,
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
	}
	r.sweets[id] = s
	return &s, nil
}

func (r *SweetRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sweets[id]; !ok {
		return false, nil
	}
	delete(r.sweets, id)
	for i, known := range r.order {
		if known == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Purchase decrements under the lock only when stock is positive.
func (r *SweetRepository) Purchase(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok || s.Quantity <= 0 {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity--
	r.sweets[id] = s
	return &s, nil
}

// Restock increments under the lock only when the result stays within
// domain.MaxQuantity.
func (r *SweetRepository) Restock(_ context.Context, id string, amount int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok || amount < 0 || s.Quantity > domain.MaxQuantity-amount {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += amount
	r.sweets[id] = s
	return &s, nil
}
