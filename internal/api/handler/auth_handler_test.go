package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/api/middleware"
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

type stubAuthService struct {
	registerFn    func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn       func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	currentUserFn func(ctx context.Context, id domain.Identity) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return s.currentUserFn(ctx, id)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator(validation.New())
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Password != "secret1" || in.Role != "admin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  &domain.User{ID: "u1", Username: in.Username, PasswordHash: "hash", Role: in.Role},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1","role":"admin"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("user missing in response: %v", resp)
	}
	if user["id"] != "u1" || user["username"] != "alice" || user["role"] != "admin" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be serialised")
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_PassesServiceErrors(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(newTestEcho(), http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_TypeMismatch(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(newTestEcho(), http.MethodPost, "/auth/register", `{"username":42,"password":"secret1"}`)
	err := handler.Register(c)
	ve, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "username" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(newTestEcho(), http.MethodPost, "/auth/register", `{"username":`)
	err := handler.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
			if in.Username != "bob" || in.Password != "pw1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{Token: "tok", User: &domain.User{ID: "u2", Username: "bob", Role: domain.RoleUser}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/auth/login", `{"username":"bob","password":"pw1234"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.User.Username != "bob" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(newTestEcho(), http.MethodPost, "/auth/login", `{"username":"bob","password":"nope"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	caller := domain.Identity{ID: "u3", Username: "carol", Role: domain.RoleAdmin}
	stub := &stubAuthService{
		currentUserFn: func(_ context.Context, id domain.Identity) (*domain.User, error) {
			if id != caller {
				t.Fatalf("unexpected identity: %+v", id)
			}
			return &domain.User{ID: id.ID, Username: id.Username, Role: id.Role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(newTestEcho(), http.MethodGet, "/auth/me", "")
	c.Set(middleware.IdentityKey, caller)

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != "u3" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutIdentity(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(newTestEcho(), http.MethodGet, "/auth/me", "")
	if err := handler.Me(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
