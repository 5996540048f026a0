package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// SweetRepository is the authoritative inventory table. Every method
// touches at most one record; Purchase and Restock are single atomic
// store operations.
type SweetRepository interface {
	Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
	// FindAll returns every sweet in insertion order.
	FindAll(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error)
	// FindByID returns domain.ErrSweetNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	// Update overwrites all writable fields and returns the new record, or
	// domain.ErrSweetNotFound.
	Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error)
	// Delete reports whether a record was removed. A missing id is not an
	// error.
	Delete(ctx context.Context, id string) (bool, error)
	// Purchase decrements quantity by one if and only if it is positive,
	// as one conditional update. When nothing matched (unknown id or no
	// stock) it returns domain.ErrSweetNotFound and changes nothing.
	Purchase(ctx context.Context, id string) (*domain.Sweet, error)
	// Restock increments quantity by amount if and only if the result stays
	// within domain.MaxQuantity, as one conditional update. When nothing
	// matched (unknown id or ceiling reached) it returns
	// domain.ErrSweetNotFound and changes nothing.
	Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error)
}

// SweetListCache holds snapshots of the full inventory listing. Snapshots
// are keyed by a generation counter that every mutation bumps, so a reader
// that loaded stale rows while a write was in flight stores them under a
// generation nobody reads any more.
type SweetListCache interface {
	// Lookup returns the snapshot for the current generation. The
	// generation is returned on a miss too, for a following Store.
	Lookup(ctx context.Context) (sweets []domain.Sweet, generation int64, hit bool, err error)
	Store(ctx context.Context, generation int64, sweets []domain.Sweet) error
	// Invalidate bumps the generation.
	Invalidate(ctx context.Context) error
}
