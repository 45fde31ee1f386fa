package service

import (
	"context"
	"sort"
	"time"

	"repair-desk/internal/domain"
	"repair-desk/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// ReportService defines the interface for the dashboard reports. Every
// report is computed from the stored records on each call.
type ReportService interface {
	// SalesReport covers r. An empty range selects the current month.
	SalesReport(ctx context.Context, r domain.DateRange) (*domain.SalesReport, error)
	MonthReport(ctx context.Context) (*domain.SalesReport, error)
	// YearReport covers the calendar year. year <= 0 selects the current one.
	YearReport(ctx context.Context, year int) (*domain.SalesReport, error)
	CompareMonths(ctx context.Context) (*domain.MonthComparison, error)
	RepairReport(ctx context.Context) (*domain.RepairReport, error)
	SecondHandReport(ctx context.Context, r domain.DateRange) (*domain.SecondHandSalesReport, error)
	TotalRevenue(ctx context.Context) (*domain.RevenueReport, error)
}

type reportService struct {
	sales   repository.SaleRepository
	repairs repository.RepairOrderRepository
	logger  *zap.Logger
	now     Clock
	loc     *time.Location
}

// NewReportService creates a new instance of ReportService. Calendar
// boundaries are computed in the server's local time zone.
func NewReportService(sales repository.SaleRepository, repairs repository.RepairOrderRepository, logger *zap.Logger) ReportService {
	return &reportService{sales: sales, repairs: repairs, logger: logger, now: systemClock, loc: time.Local}
}

// monthRange returns [first day of the month of t, first day of the next month)
func (s *reportService) monthRange(t time.Time) domain.DateRange {
	t = t.In(s.loc)
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
	return domain.DateRange{From: from, To: from.AddDate(0, 1, 0)}
}

func (s *reportService) SalesReport(ctx context.Context, r domain.DateRange) (*domain.SalesReport, error) {
	ctx, span := startSpan(ctx, "SalesReport")
	defer span.End()

	if r.From.IsZero() && r.To.IsZero() {
		r = s.monthRange(s.now())
	}
	if err := checkRange(r); err != nil {
		return nil, fail(span, err)
	}

	report, err := s.salesReport(ctx, r)
	if err != nil {
		return nil, fail(span, err)
	}
	return report, nil
}

func (s *reportService) MonthReport(ctx context.Context) (*domain.SalesReport, error) {
	ctx, span := startSpan(ctx, "MonthSalesReport")
	defer span.End()

	r := s.monthRange(s.now())
	report, err := s.salesReport(ctx, r)
	if err != nil {
		return nil, fail(span, err)
	}
	report.Month = r.From.Month().String()
	report.Year = r.From.Year()
	return report, nil
}

func (s *reportService) YearReport(ctx context.Context, year int) (*domain.SalesReport, error) {
	ctx, span := startSpan(ctx, "YearSalesReport")
	defer span.End()

	if year <= 0 {
		year = s.now().In(s.loc).Year()
	}
	span.SetAttributes(attribute.Int("year", year))

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	report, err := s.salesReport(ctx, domain.DateRange{From: from, To: from.AddDate(1, 0, 0)})
	if err != nil {
		return nil, fail(span, err)
	}
	report.Year = year
	return report, nil
}

func (s *reportService) CompareMonths(ctx context.Context) (*domain.MonthComparison, error) {
	ctx, span := startSpan(ctx, "CompareMonths")
	defer span.End()

	thisRange := s.monthRange(s.now())
	lastRange := s.monthRange(thisRange.From.AddDate(0, -1, 0))

	thisMonth, err := s.salesReport(ctx, thisRange)
	if err != nil {
		return nil, fail(span, err)
	}
	lastMonth, err := s.salesReport(ctx, lastRange)
	if err != nil {
		return nil, fail(span, err)
	}
	thisMonth.Month, thisMonth.Year = thisRange.From.Month().String(), thisRange.From.Year()
	lastMonth.Month, lastMonth.Year = lastRange.From.Month().String(), lastRange.From.Year()

	return &domain.MonthComparison{
		ThisMonth:      *thisMonth,
		LastMonth:      *lastMonth,
		PercentageHike: percentageChange(lastMonth.TotalRevenue, thisMonth.TotalRevenue),
	}, nil
}

// percentageChange is (to-from)/from*100 rounded to 2 places, or 0 when from is 0
func percentageChange(from, to decimal.Decimal) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	return to.Sub(from).Div(from).Mul(hundred).Round(2)
}

func (s *reportService) salesReport(ctx context.Context, r domain.DateRange) (*domain.SalesReport, error) {
	sales, err := s.sales.ListSales(ctx, r)
	if err != nil {
		return nil, err
	}
	return aggregateSales(sales, r), nil
}

// aggregateSales sums sales into a report. Product summaries are ordered by
// quantity sold, best sellers first.
func aggregateSales(sales []*domain.Sale, r domain.DateRange) *domain.SalesReport {
	report := &domain.SalesReport{
		From:           r.From,
		To:             r.To,
		TotalRevenue:   decimal.Zero,
		SalesCount:     len(sales),
		ProductSummary: []domain.ProductSalesSummary{},
	}

	index := map[string]int{}
	for _, sale := range sales {
		report.TotalRevenue = report.TotalRevenue.Add(sale.TotalAmount)
		for _, line := range sale.Lines {
			report.TotalItemsSold += line.Quantity

			key := line.ProductID.String()
			pos, ok := index[key]
			if !ok {
				pos = len(report.ProductSummary)
				index[key] = pos
				report.ProductSummary = append(report.ProductSummary, domain.ProductSalesSummary{
					ProductID:        key,
					Name:             line.ProductName,
					RevenueGenerated: decimal.Zero,
					SaleDates:        []time.Time{},
				})
			}
			summary := &report.ProductSummary[pos]
			summary.QuantitySold += line.Quantity
			summary.RevenueGenerated = summary.RevenueGenerated.Add(line.Subtotal())
			summary.SaleDates = append(summary.SaleDates, sale.SaleDate)
		}
	}

	for i := range report.ProductSummary {
		dates := report.ProductSummary[i].SaleDates
		sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })
	}
	sort.SliceStable(report.ProductSummary, func(a, b int) bool {
		pa, pb := report.ProductSummary[a], report.ProductSummary[b]
		if pa.QuantitySold != pb.QuantitySold {
			return pa.QuantitySold > pb.QuantitySold
		}
		return pa.Name < pb.Name
	})
	return report
}

func (s *reportService) RepairReport(ctx context.Context) (*domain.RepairReport, error) {
	ctx, span := startSpan(ctx, "RepairReport")
	defer span.End()

	orders, err := s.repairs.List(ctx, nil)
	if err != nil {
		return nil, fail(span, err)
	}
	return aggregateRepairs(orders), nil
}

// aggregateRepairs summarizes orders. Each order's cost is split evenly across
// its items, rounded down to the cent. The last item takes the remainder so
// per-type totals add up to the overall total and none goes negative.
func aggregateRepairs(orders []*domain.RepairOrder) *domain.RepairReport {
	report := &domain.RepairReport{
		TotalRepairCost: decimal.Zero,
		TotalRepairs:    len(orders),
		StatusSummary:   make(map[domain.RepairStatus]int, len(domain.RepairStatuses)),
		ProductSummary:  make(map[domain.ProductType]domain.RepairTypeSummary, len(domain.ProductTypes)),
	}
	for _, status := range domain.RepairStatuses {
		report.StatusSummary[status] = 0
	}
	for _, pt := range domain.ProductTypes {
		report.ProductSummary[pt] = domain.RepairTypeSummary{TotalRepairCost: decimal.Zero}
	}

	for _, order := range orders {
		report.TotalRepairCost = report.TotalRepairCost.Add(order.RepairCost)
		report.StatusSummary[order.Status]++

		n := len(order.Items)
		if n == 0 {
			continue
		}
		share := order.RepairCost.Div(decimal.NewFromInt(int64(n))).RoundFloor(2)
		remainder := order.RepairCost.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))

		for idx, item := range order.Items {
			pt, err := domain.ParseProductType(string(item.ProductType))
			if err != nil {
				pt = domain.ProductTypeOther
			}
			cost := share
			if idx == n-1 {
				cost = remainder
			}
			summary := report.ProductSummary[pt]
			summary.RepairsCount++
			summary.TotalRepairCost = summary.TotalRepairCost.Add(cost)
			report.ProductSummary[pt] = summary
		}
	}
	return report
}

func (s *reportService) SecondHandReport(ctx context.Context, r domain.DateRange) (*domain.SecondHandSalesReport, error) {
	ctx, span := startSpan(ctx, "SecondHandSalesReport")
	defer span.End()

	if err := checkRange(r); err != nil {
		return nil, fail(span, err)
	}
	sales, err := s.sales.ListSecondHandSales(ctx, r)
	if err != nil {
		return nil, fail(span, err)
	}

	report := &domain.SecondHandSalesReport{
		TotalSales: decimal.Zero,
		Sales:      make([]domain.SaleTransaction, 0, len(sales)),
	}
	for _, sale := range sales {
		report.TotalSales = report.TotalSales.Add(sale.TotalAmount)
		report.TotalQuantitySold += sale.QuantitySold
		report.Sales = append(report.Sales, *sale)
	}
	return report, nil
}

// TotalRevenue adds new-product sales, second-hand sales and the cost of
// completed repairs. Canceled or open repairs earn nothing.
func (s *reportService) TotalRevenue(ctx context.Context) (*domain.RevenueReport, error) {
	ctx, span := startSpan(ctx, "TotalRevenue")
	defer span.End()

	sales, err := s.sales.ListSales(ctx, domain.DateRange{})
	if err != nil {
		return nil, fail(span, err)
	}
	secondHand, err := s.sales.ListSecondHandSales(ctx, domain.DateRange{})
	if err != nil {
		return nil, fail(span, err)
	}
	completed := domain.StatusCompleted
	repairs, err := s.repairs.List(ctx, &completed)
	if err != nil {
		return nil, fail(span, err)
	}

	report := &domain.RevenueReport{
		TotalRevenueFromSales:              decimal.Zero,
		TotalRevenueFromSecondHandProducts: decimal.Zero,
		TotalRevenueFromRepairServices:     decimal.Zero,
	}
	for _, sale := range sales {
		report.TotalRevenueFromSales = report.TotalRevenueFromSales.Add(sale.TotalAmount)
	}
	for _, sale := range secondHand {
		report.TotalRevenueFromSecondHandProducts = report.TotalRevenueFromSecondHandProducts.Add(sale.TotalAmount)
	}
	for _, order := range repairs {
		report.TotalRevenueFromRepairServices = report.TotalRevenueFromRepairServices.Add(order.RepairCost)
	}
	report.TotalRevenue = report.TotalRevenueFromSales.
		Add(report.TotalRevenueFromSecondHandProducts).
		Add(report.TotalRevenueFromRepairServices)
	return report, nil
}
