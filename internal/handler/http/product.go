package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/service"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/httputil"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/validator"
)

// defaultLowStockThreshold is used when the low-stock listing gets no
// explicit threshold.
const defaultLowStockThreshold = 10

// ProductHandler handles HTTP requests for product and stock endpoints.
type ProductHandler struct {
	service *service.ProductService
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Description   string  `json:"description" validate:"omitempty,max=5000"`
	SKU           *string `json:"sku" validate:"omitempty,min=1,max=64"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	CategoryID    string  `json:"category_id" validate:"required,uuid"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	SKU         *string  `json:"sku" validate:"omitempty,min=1,max=64"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	CategoryID  *string  `json:"category_id" validate:"omitempty,uuid"`
	IsActive    *bool    `json:"is_active"`
}

// StockRequest is the JSON request body for stock adjustments.
type StockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// --- Handlers ---

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: product})
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return
	}

	params := pagination.FromRequest(r)

	products, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: newPaginatedResponse(products, total, params.Page, params.PerPage),
	})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id.String())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// GetBySlug handles GET /api/v1/products/slug/{slug}
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), id.String(), service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// IncreaseStock handles POST /api/v1/products/{id}/stock/increase
func (h *ProductHandler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, false)
}

// DecreaseStock handles POST /api/v1/products/{id}/stock/decrease
func (h *ProductHandler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, true)
}

func (h *ProductHandler) adjustStock(w http.ResponseWriter, r *http.Request, decrease bool) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	var (
		product *domain.Product
		err     error
	)
	if decrease {
		product, err = h.service.DecreaseStock(r.Context(), id.String(), req.Quantity)
	} else {
		product, err = h.service.IncreaseStock(r.Context(), id.String(), req.Quantity)
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// ListLowStock handles GET /api/v1/admin/products/low-stock
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := defaultLowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "threshold must be an integer"},
			})
			return
		}
		threshold = v
	}

	products, err := h.service.ListLowStock(r.Context(), threshold)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: products})
}

// parseProductFilter reads list filters from query parameters.
func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Search:     q.Get("search"),
		CategoryID: q.Get("category_id"),
	}

	parseFloat := func(key string) (*float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errInvalidQueryParam(key)
		}
		return &v, nil
	}

	parseBool := func(key string) (*bool, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errInvalidQueryParam(key)
		}
		return &v, nil
	}

	var err error
	if filter.MinPrice, err = parseFloat("min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parseFloat("max_price"); err != nil {
		return filter, err
	}
	if filter.InStock, err = parseBool("in_stock"); err != nil {
		return filter, err
	}
	if filter.IsActive, err = parseBool("is_active"); err != nil {
		return filter, err
	}

	return filter, nil
}

type queryParamError string

func (e queryParamError) Error() string {
	return "invalid query parameter: " + string(e)
}

func errInvalidQueryParam(key string) error {
	return queryParamError(key)
}
