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

// ProductRequest represents the create and update payload of a new product
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0,lte=2147483647"`
	Category    string          `json:"category" validate:"max=100"`
	Brand       string          `json:"brand" validate:"max=100"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
}

func (req ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Brand:       req.Brand,
		Images:      req.Images,
	}
}

// SaleLineRequest is one line of a sale
type SaleLineRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	SalePrice decimal.Decimal `json:"salePrice" validate:"gte=0"`
}

// SellRequest represents a new-product sale
type SellRequest struct {
	Products []SaleLineRequest `json:"products" validate:"required,min=1,dive"`
}

// SellResponse returns the recorded sale and the stock left per product
type SellResponse struct {
	Sale  *domain.Sale        `json:"sale"`
	Stock []domain.StockLevel `json:"stock"`
}

// ProductHandler handles HTTP requests for the new-product catalog and its sales
type ProductHandler struct {
	products service.ProductService
	sales    service.SaleService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, sales service.SaleService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, sales: sales, logger: logger}
}

// List handles GET /api/products?category=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// LowStock handles GET /api/products/low-stock?threshold=
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := intQuery(r, "threshold")
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	products, err := h.products.LowStock(r.Context(), threshold)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
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

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
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

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Sell handles POST /api/products/sell
func (h *ProductHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	lines := make([]domain.SaleLine, len(req.Products))
	for i, line := range req.Products {
		lines[i] = domain.SaleLine{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
			SalePrice: line.SalePrice,
		}
	}

	sale, levels, err := h.sales.SellProducts(r.Context(), lines)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, SellResponse{Sale: sale, Stock: levels})
}

// ListSales handles GET /api/sales?from=&to=
func (h *ProductHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	sales, err := h.sales.ListSales(r.Context(), dr)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sales)
}
