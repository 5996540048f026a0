package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// SweetService defines the inventory use cases.
type SweetService interface {
	Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
	List(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error)
	Get(ctx context.Context, id string) (*domain.Sweet, error)
	Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	// Purchase sells one unit. It fails with domain.ErrSweetNotFound or
	// domain.ErrOutOfStock without changing anything.
	Purchase(ctx context.Context, id string) (*domain.Sweet, error)
	Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error)
}
