package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups every resource handler served by the API
type Handlers struct {
	Products   *ProductHandler
	SecondHand *SecondHandHandler
	Repairs    *RepairHandler
	Reports    *ReportHandler
}

// RegisterRoutes registers all API routes. limit wraps every route that
// changes state; pass nil to leave them unthrottled.
func RegisterRoutes(r chi.Router, h Handlers, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.With(limit).Post("/", h.Products.Create)
			r.Get("/low-stock", h.Products.LowStock)
			r.With(limit).Post("/sell", h.Products.Sell)
			r.Get("/{id}", h.Products.Get)
			r.With(limit).Put("/{id}", h.Products.Update)
			r.With(limit).Delete("/{id}", h.Products.Delete)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.Products.ListSales)
			r.Get("/report", h.Reports.SalesReport)
			r.Get("/report/month", h.Reports.MonthReport)
			r.Get("/report/compare", h.Reports.CompareMonths)
			r.Get("/report/year", h.Reports.YearReport)
		})

		r.Route("/second-hand-products", func(r chi.Router) {
			r.Get("/", h.SecondHand.List)
			r.With(limit).Post("/", h.SecondHand.Create)
			r.With(limit).Post("/sell", h.SecondHand.Sell)
			r.Get("/sales", h.SecondHand.ListSales)
			r.Get("/sales/report", h.Reports.SecondHandReport)
			r.Get("/{id}", h.SecondHand.Get)
			r.With(limit).Put("/{id}", h.SecondHand.Update)
			r.With(limit).Delete("/{id}", h.SecondHand.Delete)
		})

		r.Route("/repair-orders", func(r chi.Router) {
			r.Get("/", h.Repairs.List)
			r.With(limit).Post("/", h.Repairs.Create)
			r.Get("/report", h.Reports.RepairReport)
			r.Get("/{id}", h.Repairs.Get)
			r.With(limit).Put("/{id}", h.Repairs.UpdateDetails)
			r.With(limit).Delete("/{id}", h.Repairs.Delete)
			r.With(limit).Patch("/{id}/status", h.Repairs.TransitionStatus)
			r.With(limit).Patch("/{id}/items/{index}", h.Repairs.MarkItemServiced)
		})

		r.Get("/reports/total-revenue", h.Reports.TotalRevenue)
		r.Get("/activities", h.Reports.Activities)
	})
}
