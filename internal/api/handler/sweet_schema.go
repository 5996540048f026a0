package handler

import "github.com/sweetshop/sweetshop-api/internal/core/domain"

// errorResponse documents the error envelope rendered by the API's error
// handler.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

// sweetRequest is the body of create and update. Pointers tell a missing
// field from a zero value; quantity is decoded as a number so that 1.5 is
// reported as "not an integer" rather than as a type error.
type sweetRequest struct {
	Name     *string  `json:"name"     validate:"required,min=1,max=100"`
	Category *string  `json:"category" validate:"required,sweetcategory"`
	Price    *float64 `json:"price"    validate:"required,gte=0.01"`
	Quantity *float64 `json:"quantity" validate:"required,integral,gte=0,lte=1000000000"`
}

type restockRequest struct {
	Amount *float64 `json:"amount" validate:"required,integral,gte=1,lte=1000000000"`
}

// --- Response types ---

type sweetResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
