package service

import (
	"context"
	"fmt"
	"strings"

	"repair-desk/internal/domain"
	"repair-desk/internal/logger"
	"repair-desk/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SaleService defines the interface for selling stock
type SaleService interface {
	// SellProducts decrements the stock of every line and records the sale,
	// all or nothing. It returns the stock left per product.
	SellProducts(ctx context.Context, lines []domain.SaleLine) (*domain.Sale, []domain.StockLevel, error)
	ListSales(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error)
	// SellSecondHand sells quantity units of a second-hand product at its
	// catalog price and returns the remaining stock.
	SellSecondHand(ctx context.Context, productID uuid.UUID, quantity int) (*domain.SaleTransaction, int, error)
	ListSecondHandSales(ctx context.Context, r domain.DateRange) ([]*domain.SaleTransaction, error)
}

type saleService struct {
	repo       repository.SaleRepository
	activities ActivityService
	logger     *zap.Logger
	now        Clock
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(repo repository.SaleRepository, activities ActivityService, logger *zap.Logger) SaleService {
	return &saleService{repo: repo, activities: activities, logger: logger, now: systemClock}
}

func (s *saleService) SellProducts(ctx context.Context, lines []domain.SaleLine) (*domain.Sale, []domain.StockLevel, error) {
	ctx, span := startSpan(ctx, "SellProducts")
	defer span.End()

	sale, err := domain.NewSale(lines, s.now().UTC())
	if err != nil {
		return nil, nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("saleID", sale.ID.String()), attribute.Int("lineCount", len(sale.Lines)))

	levels, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return nil, nil, fail(span, err)
	}

	logger.WithContext(ctx, s.logger).Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.TotalAmount.String()),
	)
	s.activities.Record(ctx, domain.ActivitySell, describeSale(sale))
	return sale, levels, nil
}

func (s *saleService) ListSales(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error) {
	ctx, span := startSpan(ctx, "ListSales")
	defer span.End()

	if err := checkRange(r); err != nil {
		return nil, fail(span, err)
	}
	sales, err := s.repo.ListSales(ctx, r)
	if err != nil {
		return nil, fail(span, err)
	}
	return sales, nil
}

func (s *saleService) SellSecondHand(ctx context.Context, productID uuid.UUID, quantity int) (*domain.SaleTransaction, int, error) {
	ctx, span := startSpan(ctx, "SellSecondHand")
	defer span.End()
	span.SetAttributes(attribute.String("productID", productID.String()), attribute.Int("quantity", quantity))

	sale, err := domain.NewSaleTransaction(productID, quantity, s.now().UTC())
	if err != nil {
		return nil, 0, fail(span, err)
	}

	remaining, err := s.repo.CreateSecondHandSale(ctx, sale)
	if err != nil {
		return nil, 0, fail(span, err)
	}

	logger.WithContext(ctx, s.logger).Info("Second-hand sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("remaining_stock", remaining),
	)
	s.activities.Record(ctx, domain.ActivitySell,
		fmt.Sprintf("Sold %d x second-hand %q for %s.", sale.QuantitySold, sale.ProductName, sale.TotalAmount.StringFixed(2)))
	return sale, remaining, nil
}

func (s *saleService) ListSecondHandSales(ctx context.Context, r domain.DateRange) ([]*domain.SaleTransaction, error) {
	ctx, span := startSpan(ctx, "ListSecondHandSales")
	defer span.End()

	if err := checkRange(r); err != nil {
		return nil, fail(span, err)
	}
	sales, err := s.repo.ListSecondHandSales(ctx, r)
	if err != nil {
		return nil, fail(span, err)
	}
	return sales, nil
}

func describeSale(sale *domain.Sale) string {
	parts := make([]string, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		parts = append(parts, fmt.Sprintf("%d x %q", line.Quantity, line.ProductName))
	}
	return fmt.Sprintf("Sold %s for %s.", strings.Join(parts, ", "), sale.TotalAmount.StringFixed(2))
}

func checkRange(r domain.DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return domain.NewValidationError("to", "must be after from")
	}
	return nil
}
