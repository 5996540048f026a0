package handler

import (
	"strings"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// --- Request → Service input ---

func (r *sweetRequest) normalize() {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
}

// toSweetInput must only be called on a validated request.
func toSweetInput(r sweetRequest) domain.SweetInput {
	return domain.SweetInput{
		Name:     *r.Name,
		Category: domain.Category(*r.Category),
		Price:    *r.Price,
		Quantity: int(*r.Quantity),
	}
}

// --- Service result → HTTP response ---

func toSweetResponse(s *domain.Sweet) sweetResponse {
	return sweetResponse{
		ID:       s.ID,
		Name:     s.Name,
		Category: string(s.Category),
		Price:    s.Price,
		Quantity: s.Quantity,
	}
}

func toSweetResponses(sweets []domain.Sweet) []sweetResponse {
	out := make([]sweetResponse, 0, len(sweets))
	for i := range sweets {
		out = append(out, toSweetResponse(&sweets[i]))
	}
	return out
}
