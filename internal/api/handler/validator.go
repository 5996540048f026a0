package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

// echoValidator lets handlers call c.Validate(req) against the shared rules.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echo.Validator backed by v.
func NewValidator(v *validation.Validator) echo.Validator {
	return &echoValidator{v: v}
}

func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")

// bindJSON decodes the request body into dst. A value of the wrong JSON
// type becomes a field error; any other decoding failure is a plain 400.
func bindJSON(c echo.Context, dst any) error {
	err := new(echo.DefaultBinder).BindBody(c, dst)
	if err == nil {
		return nil
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return domain.NewValidationError(domain.FieldError{
			Field:   ute.Field,
			Message: fmt.Sprintf("%s must be a %s", ute.Field, jsonKind(ute.Type)),
		})
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return err
	}
	return errInvalidBody.WithInternal(err)
}

// bindAndValidate binds dst and runs its validate tags, reporting type
// errors and rule violations together. A field with a type error is not
// reported again as missing.
func bindAndValidate(c echo.Context, dst any, normalize func()) error {
	out := domain.NewValidationError()

	if err := bindJSON(c, dst); err != nil {
		typeErr, ok := domain.AsValidationError(err)
		if !ok {
			return err
		}
		out.Merge(typeErr)
	}
	if normalize != nil {
		normalize()
	}

	if err := c.Validate(dst); err != nil {
		ruleErr, ok := domain.AsValidationError(err)
		if !ok {
			return err
		}
		for _, f := range ruleErr.Fields {
			if !out.Has(f.Field) {
				out.Add(f.Field, f.Message)
			}
		}
	}

	return out.ErrOrNil()
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return "object"
	}
}
