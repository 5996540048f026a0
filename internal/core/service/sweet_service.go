package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/pkg/metrics"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

// SweetService implements the inventory use cases on top of a
// SweetRepository. The list cache is optional; when it is nil every list is
// served straight from the repository.
type SweetService struct {
	repo      ports.SweetRepository
	cache     ports.SweetListCache
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewSweetService(repo ports.SweetRepository, cache ports.SweetListCache, v *validation.Validator, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, cache: cache, validator: v, logger: logger}
}

func (s *SweetService) Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create sweet: %w", err)
	}
	s.invalidate(ctx)

	metrics.SweetsCreatedTotal.WithLabelValues(string(created.Category)).Inc()
	s.logger.Info().
		Str("sweet_id", created.ID).
		Str("name", created.Name).
		Str("actor", domain.ActorName(ctx)).
		Msg("sweet created")

	return created, nil
}

// List returns the whole inventory. A cache failure is logged and the
// request falls through to the repository.
func (s *SweetService) List(ctx context.Context) ([]domain.Sweet, error) {
	if s.cache == nil {
		return s.findAll(ctx)
	}

	cached, gen, hit, err := s.cache.Lookup(ctx)
	if err != nil {
		metrics.ListCacheLookupsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("list cache lookup failed")
		return s.findAll(ctx)
	}
	if hit {
		metrics.ListCacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ListCacheLookupsTotal.WithLabelValues("miss").Inc()

	sweets, err := s.findAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Store(ctx, gen, sweets); err != nil {
		s.logger.Warn().Err(err).Int64("generation", gen).Msg("list cache store failed")
	}
	return sweets, nil
}

func (s *SweetService) findAll(ctx context.Context) ([]domain.Sweet, error) {
	sweets, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	sweets, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSweetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get sweet: %w", err)
	}
	return sweet, nil
}

// Update validates in before touching the store, then overwrites all four
// fields in one store operation.
func (s *SweetService) Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, domain.ErrSweetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update sweet: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info().
		Str("sweet_id", updated.ID).
		Str("actor", domain.ActorName(ctx)).
		Msg("sweet updated")

	return updated, nil
}

// Delete removes a sweet. Existence is checked first so an unknown id
// reports ErrSweetNotFound; a concurrent delete landing between the check
// and the removal still reports success.
func (s *SweetService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	s.invalidate(ctx)

	metrics.SweetsDeletedTotal.Inc()
	s.logger.Info().
		Str("sweet_id", id).
		Str("actor", domain.ActorName(ctx)).
		Msg("sweet deleted")

	return nil
}

// Purchase sells one unit through the repository's conditional decrement.
// Only when that matched nothing is the record read, to tell a missing
// sweet from an empty one.
func (s *SweetService) Purchase(ctx context.Context, id string) (*domain.Sweet, error) {
	sweet, err := s.repo.Purchase(ctx, id)
	if err == nil {
		s.invalidate(ctx)
		metrics.PurchasesTotal.WithLabelValues("success").Inc()
		s.logger.Debug().
			Str("sweet_id", id).
			Int("remaining", sweet.Quantity).
			Str("actor", domain.ActorName(ctx)).
			Msg("sweet purchased")
		return sweet, nil
	}
	if !errors.Is(err, domain.ErrSweetNotFound) {
		metrics.PurchasesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("purchase sweet: %w", err)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrSweetNotFound) {
			metrics.PurchasesTotal.WithLabelValues("not_found").Inc()
			return nil, err
		}
		metrics.PurchasesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("purchase sweet: %w", err)
	}

	metrics.PurchasesTotal.WithLabelValues("out_of_stock").Inc()
	return nil, domain.ErrOutOfStock
}

// Restock adds amount units. amount must be at least one, and the result may
// not exceed domain.MaxQuantity. The ceiling is checked by the store in the
// same operation as the increment; when that matched nothing the record is
// read to tell a missing sweet from a full one.
func (s *SweetService) Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error) {
	if amount < 1 {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "amount",
			Message: "amount must be at least 1",
		})
	}
	if amount > domain.MaxQuantity {
		return nil, restockLimitError()
	}

	sweet, err := s.repo.Restock(ctx, id, amount)
	if err != nil {
		if !errors.Is(err, domain.ErrSweetNotFound) {
			return nil, fmt.Errorf("restock sweet: %w", err)
		}
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("sweet_id", id).
			Int("amount", amount).
			Msg("restock rejected: stock ceiling")
		return nil, restockLimitError()
	}
	s.invalidate(ctx)

	metrics.RestocksTotal.Inc()
	metrics.RestockUnitsTotal.Add(float64(amount))
	s.logger.Info().
		Str("sweet_id", id).
		Int("amount", amount).
		Int("quantity", sweet.Quantity).
		Str("actor", domain.ActorName(ctx)).
		Msg("sweet restocked")

	return sweet, nil
}

func restockLimitError() *domain.ValidationError {
	return domain.NewValidationError(domain.FieldError{
		Field:   "amount",
		Message: fmt.Sprintf("amount would raise quantity above %d", domain.MaxQuantity),
	})
}

// invalidate bumps the list cache generation. A failure leaves the previous
// snapshot readable until its TTL runs out.
func (s *SweetService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("list cache invalidation failed")
	}
}
