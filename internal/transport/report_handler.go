package transport

import (
	"net/http"

	"repair-desk/internal/middleware"
	"repair-desk/internal/service"

	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for the dashboard reports and activity feed
type ReportHandler struct {
	reports    service.ReportService
	activities service.ActivityService
	logger     *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService, activities service.ActivityService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, activities: activities, logger: logger}
}

// respond writes v, or the error mapped to its status
func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, v)
}

// SalesReport handles GET /api/sales/report?from=&to=
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	report, err := h.reports.SalesReport(r.Context(), dr)
	h.respond(w, r, report, err)
}

// MonthReport handles GET /api/sales/report/month
func (h *ReportHandler) MonthReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.MonthReport(r.Context())
	h.respond(w, r, report, err)
}

// CompareMonths handles GET /api/sales/report/compare
func (h *ReportHandler) CompareMonths(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.CompareMonths(r.Context())
	h.respond(w, r, report, err)
}

// YearReport handles GET /api/sales/report/year?year=
func (h *ReportHandler) YearReport(w http.ResponseWriter, r *http.Request) {
	year, err := intQuery(r, "year")
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	report, err := h.reports.YearReport(r.Context(), year)
	h.respond(w, r, report, err)
}

// RepairReport handles GET /api/repair-orders/report
func (h *ReportHandler) RepairReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.RepairReport(r.Context())
	h.respond(w, r, report, err)
}

// SecondHandReport handles GET /api/second-hand-products/sales/report?from=&to=
func (h *ReportHandler) SecondHandReport(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	report, err := h.reports.SecondHandReport(r.Context(), dr)
	h.respond(w, r, report, err)
}

// TotalRevenue handles GET /api/reports/total-revenue
func (h *ReportHandler) TotalRevenue(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.TotalRevenue(r.Context())
	h.respond(w, r, report, err)
}

// Activities handles GET /api/activities?limit=
func (h *ReportHandler) Activities(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	activities, err := h.activities.List(r.Context(), limit)
	h.respond(w, r, activities, err)
}
