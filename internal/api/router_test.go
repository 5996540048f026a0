package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/sweetshop-api/internal/core/service"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

// testServer runs the full router on the in-memory store.
type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens, err := service.NewTokenService(&service.TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)

	v := validation.New()
	log := zerolog.Nop()
	reg := prometheus.NewRegistry()

	e := NewRouter(Deps{
		Logger:     log,
		Validator:  v,
		Tokens:     tokens,
		Auth:       service.NewAuthService(memory.NewUserRepository(), tokens, v, log),
		Sweets:     service.NewSweetService(memory.NewSweetRepository(), nil, v, log),
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token.
func (s *testServer) register(username, role string) string {
	s.t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password1","role":%q}`, username, role)
	rec := s.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

type sweetJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (s *testServer) createSweet(token, body string) sweetJSON {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/sweets", token, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sweetJSON](s.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorJSON struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func TestScenarioA_PurchaseUntilOutOfStock(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("admin", "admin")
	user := s.register("buyer", "user")

	choc := s.createSweet(admin, `{"name":"Choc","category":"Chocolate","price":5.00,"quantity":3}`)

	for i := 1; i <= 3; i++ {
		rec := s.do(http.MethodPost, "/sweets/"+choc.ID+"/purchase", user, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 3-i, decode[sweetJSON](t, rec).Quantity)
	}

	rec := s.do(http.MethodPost, "/sweets/"+choc.ID+"/purchase", user, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Item is out of stock", decode[errorJSON](t, rec).Message)

	rec = s.do(http.MethodGet, "/sweets/"+choc.ID, user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[sweetJSON](t, rec).Quantity)
}

func TestScenarioB_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", "", `{"username":"alice","password":"password1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, rec)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "alice", first.User.Username)
	assert.Equal(t, "user", first.User.Role)

	rec = s.do(http.MethodPost, "/auth/register", "", `{"username":"alice","password":"password1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", decode[errorJSON](t, rec).Message)
}

func TestScenarioC_NonAdminRestockIsForbidden(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("admin", "admin")
	user := s.register("bob", "user")
	sweet := s.createSweet(admin, `{"name":"Fudge","category":"Candy","price":2,"quantity":1}`)

	for _, id := range []string{sweet.ID, "does-not-exist", "0123456789abcdef01234567"} {
		rec := s.do(http.MethodPost, "/sweets/"+id+"/restock", user, `{"amount":5}`)
		assert.Equal(t, http.StatusForbidden, rec.Code, "id %s", id)
		assert.Equal(t, "Admin access required", decode[errorJSON](t, rec).Message)
	}

	// An invalid body does not change the answer either.
	rec := s.do(http.MethodPost, "/sweets/"+sweet.ID+"/restock", user, `{"amount":-1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScenarioD_SearchByCategoryAndPriceRange(t *testing.T) {
	s := newTestServer(t)
	token := s.register("carol", "user")

	s.createSweet(token, `{"name":"Cheap Candy","category":"Candy","price":0.5,"quantity":1}`)
	low := s.createSweet(token, `{"name":"Gum","category":"Candy","price":1,"quantity":1}`)
	mid := s.createSweet(token, `{"name":"Lolly","category":"Candy","price":3.25,"quantity":1}`)
	high := s.createSweet(token, `{"name":"Rock","category":"Candy","price":5,"quantity":1}`)
	s.createSweet(token, `{"name":"Posh Candy","category":"Candy","price":5.01,"quantity":1}`)
	s.createSweet(token, `{"name":"Bar","category":"Chocolate","price":3,"quantity":1}`)

	rec := s.do(http.MethodGet, "/sweets/search?category=Candy&minPrice=1&maxPrice=5", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []sweetJSON{low, mid, high}, decode[[]sweetJSON](t, rec))

	rec = s.do(http.MethodGet, "/sweets/search?name=CANDY", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]sweetJSON](t, rec), 2)

	rec = s.do(http.MethodGet, "/sweets/search?minPrice=cheap", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorJSON](t, rec)
	assert.Equal(t, "Invalid search parameters", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "minPrice", body.Errors[0].Field)
}

func TestScenarioE_DeleteMissingAsAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("admin", "admin")

	rec := s.do(http.MethodDelete, "/sweets/0123456789abcdef01234567", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Sweet not found", decode[errorJSON](t, rec).Message)
}

func TestAuthorizationAsymmetry(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("admin", "admin")
	user := s.register("dave", "user")

	// Any authenticated user may create and update.
	sweet := s.createSweet(user, `{"name":"Tart","category":"Pastry","price":4,"quantity":2}`)
	rec := s.do(http.MethodPut, "/sweets/"+sweet.ID, user, `{"name":"Tart","category":"Pastry","price":4.5,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 4.5, decode[sweetJSON](t, rec).Price)

	// Delete and restock need the admin role.
	rec = s.do(http.MethodDelete, "/sweets/"+sweet.ID, user, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/sweets/"+sweet.ID+"/restock", admin, `{"amount":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, decode[sweetJSON](t, rec).Quantity)

	rec = s.do(http.MethodDelete, "/sweets/"+sweet.ID, admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Sweet deleted successfully"}`, rec.Body.String())
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/sweets", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decode[errorJSON](t, rec).Message)

	rec = s.do(http.MethodGet, "/sweets", "not.a.token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode[errorJSON](t, rec).Message)

	rec = s.do(http.MethodPost, "/sweets/abc/purchase", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	s.register("erin", "admin")

	rec := s.do(http.MethodPost, "/auth/login", "", `{"username":"erin","password":"wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decode[errorJSON](t, rec).Message)

	rec = s.do(http.MethodPost, "/auth/login", "", `{"username":"nobody","password":"password1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", `{"username":"erin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", `{"username":"erin","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[struct {
		Token string `json:"token"`
	}](t, rec).Token

	rec = s.do(http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		User struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, rec)
	assert.Equal(t, "erin", me.User.Username)
	assert.Equal(t, "admin", me.User.Role)
}

func TestCreateValidationReportsAllFields(t *testing.T) {
	s := newTestServer(t)
	token := s.register("frank", "user")

	rec := s.do(http.MethodPost, "/sweets", token, `{"name":"","category":"Bread","price":"abc","quantity":1.5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorJSON](t, rec)
	assert.Equal(t, "Validation failed", body.Message)
	fields := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"name", "category", "price", "quantity"}, fields)

	rec = s.do(http.MethodGet, "/sweets", token, "")
	assert.JSONEq(t, `[]`, rec.Body.String(), "nothing is stored on a validation failure")
}

func TestConcurrentPurchasesOverHTTP(t *testing.T) {
	const stock, buyers = 15, 60

	s := newTestServer(t)
	token := s.register("grace", "user")
	sweet := s.createSweet(token, fmt.Sprintf(`{"name":"Macaron","category":"Cookie","price":1.5,"quantity":%d}`, stock))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[int]int)
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := s.do(http.MethodPost, "/sweets/"+sweet.ID+"/purchase", token, "")
			mu.Lock()
			codes[rec.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, codes[http.StatusOK])
	assert.Equal(t, buyers-stock, codes[http.StatusBadRequest])

	rec := s.do(http.MethodGet, "/sweets/"+sweet.ID, token, "")
	assert.Equal(t, 0, decode[sweetJSON](t, rec).Quantity)
}

func TestListAndSearchAreIdempotent(t *testing.T) {
	s := newTestServer(t)
	token := s.register("heidi", "user")
	s.createSweet(token, `{"name":"Eclair","category":"Pastry","price":3,"quantity":4}`)
	s.createSweet(token, `{"name":"Brownie","category":"Cake","price":2,"quantity":0}`)

	for _, path := range []string{"/sweets", "/sweets/search?category=Cake"} {
		first := s.do(http.MethodGet, path, token, "")
		second := s.do(http.MethodGet, path, token, "")
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, first.Body.String(), second.Body.String(), path)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(http.MethodGet, "/sweets", "", "")
	rec = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sweetshop_requests_total")

	rec = s.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[errorJSON](t, rec).Message)
}

func TestStockCeilingKeepsQuantityNonNegative(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("admin", "admin")

	rec := s.do(http.MethodPost, "/sweets", admin, `{"name":"Gobstopper","category":"Candy","price":1,"quantity":9000000000000000000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity", decode[errorJSON](t, rec).Errors[0].Field)

	full := s.createSweet(admin, `{"name":"Gobstopper","category":"Candy","price":1,"quantity":1000000000}`)

	for _, body := range []string{`{"amount":9000000000000000000}`, `{"amount":1000000000}`, `{"amount":1}`} {
		rec = s.do(http.MethodPost, "/sweets/"+full.ID+"/restock", admin, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		resp := decode[errorJSON](t, rec)
		require.Len(t, resp.Errors, 1, body)
		assert.Equal(t, "amount", resp.Errors[0].Field, body)
	}

	rec = s.do(http.MethodPost, "/sweets/"+full.ID+"/purchase", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 999999999, decode[sweetJSON](t, rec).Quantity)
}

func TestRegisterRejectsPasswordLongerThan72Bytes(t *testing.T) {
	s := newTestServer(t)

	body := fmt.Sprintf(`{"username":"long","password":%q}`, strings.Repeat("p", 80))
	rec := s.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	resp := decode[errorJSON](t, rec)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "password", resp.Errors[0].Field)
	assert.Equal(t, "password must be at most 72 bytes", resp.Errors[0].Message)
}
