// Package validation runs the statically declared field rules of request
// and input structs and reports every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the shop's custom rules registered:
//
//	sweetcategory  value is one of domain.Categories
//	integral       number has no fractional part
//	maxbytes=N     string is at most N bytes long (not runes)
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("sweetcategory", isSweetCategory)
	_ = v.RegisterValidation("integral", isIntegral)
	_ = v.RegisterValidation("maxbytes", hasMaxBytes)

	return &Validator{v: v}
}

// Struct validates s. It returns nil, a *domain.ValidationError listing
// every failing field, or the validator's own error when s is not a struct.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := domain.NewValidationError()
	seen := make(map[string]bool, len(ve))
	for _, fe := range ve {
		// One message per field keeps the list readable for clients.
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "sweetcategory":
		return fmt.Sprintf("%s must be one of: %s", field, categoryList())
	case "integral":
		return field + " must be an integer"
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func isSweetCategory(fl validator.FieldLevel) bool {
	f := reflect.Indirect(fl.Field())
	if f.Kind() != reflect.String {
		return false
	}
	return domain.Category(f.String()).Valid()
}

func isIntegral(fl validator.FieldLevel) bool {
	f := reflect.Indirect(fl.Field())
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsInf(x, 0) && !math.IsNaN(x) && x == math.Trunc(x)
	default:
		return false
	}
}

func hasMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("validation: bad maxbytes parameter %q", fl.Param()))
	}
	f := reflect.Indirect(fl.Field())
	if f.Kind() != reflect.String {
		return false
	}
	return len(f.String()) <= limit
}
