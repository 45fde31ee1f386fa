package transport

import (
	"net/http"

	"repair-desk/internal/domain"
	"repair-desk/internal/middleware"
	"repair-desk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SecondHandProductRequest represents the create and update payload of a second-hand product
type SecondHandProductRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=2000"`
	Price          decimal.Decimal `json:"price" validate:"gte=0"`
	Stock          int             `json:"stock" validate:"gte=0,lte=2147483647"`
	Category       string          `json:"category" validate:"max=100"`
	Brand          string          `json:"brand" validate:"max=100"`
	Images         []string        `json:"images" validate:"omitempty,dive,url"`
	Condition      string          `json:"condition" validate:"omitempty,oneof=Excellent Good Fair Poor"`
	UsageDuration  string          `json:"usageDuration" validate:"max=100"`
	ConditionNotes string          `json:"conditionNotes" validate:"max=2000"`
}

func (req SecondHandProductRequest) toDomain() *domain.SecondHandProduct {
	return &domain.SecondHandProduct{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		Category:       req.Category,
		Brand:          req.Brand,
		Images:         req.Images,
		Condition:      domain.Condition(req.Condition),
		UsageDuration:  req.UsageDuration,
		ConditionNotes: req.ConditionNotes,
	}
}

// SecondHandSellRequest represents a second-hand sale. The price comes from the catalog.
type SecondHandSellRequest struct {
	ProductID    string `json:"productId" validate:"required,uuid"`
	QuantitySold int    `json:"quantitySold" validate:"gt=0,lte=2147483647"`
}

// SecondHandSellResponse returns the recorded sale and the remaining stock
type SecondHandSellResponse struct {
	Sale           *domain.SaleTransaction `json:"sale"`
	RemainingStock int                     `json:"remainingStock"`
}

// SecondHandHandler handles HTTP requests for second-hand products and their sales
type SecondHandHandler struct {
	products service.SecondHandService
	sales    service.SaleService
	logger   *zap.Logger
}

// NewSecondHandHandler creates a new SecondHandHandler
func NewSecondHandHandler(products service.SecondHandService, sales service.SaleService, logger *zap.Logger) *SecondHandHandler {
	return &SecondHandHandler{products: products, sales: sales, logger: logger}
}

// List handles GET /api/second-hand-products?category=
func (h *SecondHandHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles POST /api/second-hand-products
func (h *SecondHandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SecondHandProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Second-hand product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Get handles GET /api/second-hand-products/{id}
func (h *SecondHandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/second-hand-products/{id}
func (h *SecondHandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SecondHandProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.products.Update(r.Context(), id, req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/second-hand-products/{id}
func (h *SecondHandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sell handles POST /api/second-hand-products/sell
func (h *SecondHandHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req SecondHandSellRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	sale, remaining, err := h.sales.SellSecondHand(r.Context(), uuid.MustParse(req.ProductID), req.QuantitySold)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, SecondHandSellResponse{Sale: sale, RemainingStock: remaining})
}

// ListSales handles GET /api/second-hand-products/sales?from=&to=
func (h *SecondHandHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	sales, err := h.sales.ListSecondHandSales(r.Context(), dr)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sales)
}
