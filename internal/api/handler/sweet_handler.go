package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// SweetHandler serves the inventory endpoints.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// List returns the whole inventory.
//
// @Summary      List sweets
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   sweetResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponses(sweets))
}

// Search filters the inventory. All parameters are optional and combine
// with AND.
//
// @Summary      Search sweets
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        name      query     string  false  "Case-insensitive substring of the name"
// @Param        category  query     string  false  "Exact category"
// @Param        minPrice  query     number  false  "Inclusive lower price bound"
// @Param        maxPrice  query     number  false  "Inclusive upper price bound"
// @Success      200       {array}   sweetResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	filter, err := parseSearchFilter(c)
	if err != nil {
		return err
	}

	sweets, err := h.service.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponses(sweets))
}

func parseSearchFilter(c echo.Context) (domain.SweetFilter, error) {
	ve := &domain.ValidationError{Message: "Invalid search parameters"}
	filter := domain.SweetFilter{Name: strings.TrimSpace(c.QueryParam("name"))}

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		if cat := domain.Category(raw); cat.Valid() {
			filter.Category = cat
		} else {
			ve.Add("category", "category must be one of the known categories")
		}
	}
	filter.MinPrice = parsePrice(c, "minPrice", ve)
	filter.MaxPrice = parsePrice(c, "maxPrice", ve)

	return filter, ve.ErrOrNil()
}

func parsePrice(c echo.Context, param string, ve *domain.ValidationError) *float64 {
	raw := strings.TrimSpace(c.QueryParam(param))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		ve.Add(param, fmt.Sprintf("%s must be a non-negative number", param))
		return nil
	}
	return &v
}

// Get returns one sweet.
//
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  sweetResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// Create adds a sweet. Open to every authenticated user.
//
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sweetRequest  true  "Sweet"
// @Success      201   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req sweetRequest
	if err := bindAndValidate(c, &req, req.normalize); err != nil {
		return err
	}

	sweet, err := h.service.Create(c.Request().Context(), toSweetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSweetResponse(sweet))
}

// Update overwrites every field of a sweet. Open to every authenticated
// user.
//
// @Summary      Update a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Sweet ID"
// @Param        body  body      sweetRequest  true  "Sweet"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req sweetRequest
	if err := bindAndValidate(c, &req, req.normalize); err != nil {
		return err
	}

	sweet, err := h.service.Update(c.Request().Context(), c.Param("id"), toSweetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// Delete removes a sweet. Admin only.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Sweet deleted successfully"})
}

// Purchase sells one unit.
//
// @Summary      Purchase a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  sweetResponse
// @Failure      400  {object}  errorResponse  "Out of stock"
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	sweet, err := h.service.Purchase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// Restock adds units to a sweet. Admin only.
//
// @Summary      Restock a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Sweet ID"
// @Param        body  body      restockRequest  true  "Units to add"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	var req restockRequest
	if err := bindAndValidate(c, &req, nil); err != nil {
		return err
	}

	sweet, err := h.service.Restock(c.Request().Context(), c.Param("id"), int(*req.Amount))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}
