package transport

import (
	"net/http"
	"strconv"
	"time"

	"repair-desk/internal/domain"
	"repair-desk/internal/middleware"
	"repair-desk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RepairItemRequest describes one item brought in for repair
type RepairItemRequest struct {
	ModelNo               string            `json:"modelNo" validate:"max=100"`
	SerialNo              string            `json:"serialNo" validate:"max=100"`
	Problem               string            `json:"problem" validate:"max=2000"`
	ProductType           string            `json:"productType"`
	SelectedAccessories   []string          `json:"selectedAccessories"`
	AccessoryDescriptions map[string]string `json:"accessoryDescriptions"`
	Image                 string            `json:"image" validate:"omitempty,url"`
}

// RepairOrderRequest represents the create and update-details payload of a repair order
type RepairOrderRequest struct {
	CustomerName         string              `json:"customerName" validate:"required,max=200"`
	CustomerEmail        string              `json:"customerEmail" validate:"omitempty,email"`
	ContactNumber        string              `json:"contactNumber" validate:"required,max=50"`
	ReceiverName         string              `json:"receiverName" validate:"max=200"`
	TechnicianName       string              `json:"technicianName" validate:"max=200"`
	Items                []RepairItemRequest `json:"items" validate:"required,min=1,dive"`
	ExpectedAmount       *decimal.Decimal    `json:"expectedAmount"`
	StartDate            *time.Time          `json:"startDate"`
	ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate"`
}

func (req RepairOrderRequest) toDomain() *domain.RepairOrder {
	order := &domain.RepairOrder{
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		ContactNumber:        req.ContactNumber,
		ReceiverName:         req.ReceiverName,
		TechnicianName:       req.TechnicianName,
		ExpectedAmount:       req.ExpectedAmount,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Items:                make([]domain.RepairItem, len(req.Items)),
	}
	if req.StartDate != nil {
		order.StartDate = *req.StartDate
	}
	for i, item := range req.Items {
		order.Items[i] = domain.RepairItem{
			ModelNo:               item.ModelNo,
			SerialNo:              item.SerialNo,
			Problem:               item.Problem,
			ProductType:           domain.ProductType(item.ProductType),
			SelectedAccessories:   item.SelectedAccessories,
			AccessoryDescriptions: item.AccessoryDescriptions,
			Image:                 item.Image,
		}
	}
	return order
}

// StatusRequest moves a repair order through its lifecycle
type StatusRequest struct {
	RepairStatus string           `json:"repairStatus" validate:"required"`
	RepairCost   *decimal.Decimal `json:"repairCost"`
}

// ServiceItemRequest marks an item as serviced
type ServiceItemRequest struct {
	TechnicianName string `json:"technicianName" validate:"required,max=200"`
}

// RepairOrderResponse adds the servicing progress to a repair order
type RepairOrderResponse struct {
	*domain.RepairOrder
	TotalItems     int `json:"totalItems"`
	ItemsRemaining int `json:"itemsRemaining"`
}

func newRepairOrderResponse(order *domain.RepairOrder) RepairOrderResponse {
	return RepairOrderResponse{
		RepairOrder:    order,
		TotalItems:     order.TotalItems(),
		ItemsRemaining: order.ItemsRemaining(),
	}
}

// RepairHandler handles HTTP requests for repair orders
type RepairHandler struct {
	repairs service.RepairService
	logger  *zap.Logger
}

// NewRepairHandler creates a new RepairHandler
func NewRepairHandler(repairs service.RepairService, logger *zap.Logger) *RepairHandler {
	return &RepairHandler{repairs: repairs, logger: logger}
}

// List handles GET /api/repair-orders?status=
func (h *RepairHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.RepairStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := domain.ParseRepairStatus(v)
		if err != nil {
			middleware.RespondWithDomainError(w, r, h.logger, err)
			return
		}
		status = &parsed
	}

	orders, err := h.repairs.List(r.Context(), status)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	response := make([]RepairOrderResponse, len(orders))
	for i, order := range orders {
		response[i] = newRepairOrderResponse(order)
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Create handles POST /api/repair-orders
func (h *RepairHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RepairOrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.repairs.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Repair order created", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, newRepairOrderResponse(order))
}

// Get handles GET /api/repair-orders/{id}
func (h *RepairHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.repairs.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newRepairOrderResponse(order))
}

// UpdateDetails handles PUT /api/repair-orders/{id}
func (h *RepairHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RepairOrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.repairs.UpdateDetails(r.Context(), id, req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newRepairOrderResponse(order))
}

// TransitionStatus handles PATCH /api/repair-orders/{id}/status
func (h *RepairHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.repairs.TransitionStatus(r.Context(), id, domain.RepairStatus(req.RepairStatus), req.RepairCost)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newRepairOrderResponse(order))
}

// MarkItemServiced handles PATCH /api/repair-orders/{id}/items/{index}
func (h *RepairHandler) MarkItemServiced(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "index", Message: "must be an integer"},
		})
		return
	}
	var req ServiceItemRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.repairs.MarkItemServiced(r.Context(), id, index, req.TechnicianName)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newRepairOrderResponse(order))
}

// Delete handles DELETE /api/repair-orders/{id}
func (h *RepairHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repairs.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
