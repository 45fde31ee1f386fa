package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSalesSummary aggregates the sale lines of one product
type ProductSalesSummary struct {
	ProductID        string          `json:"productId"`
	Name             string          `json:"name"`
	QuantitySold     int             `json:"quantitySold"`
	RevenueGenerated decimal.Decimal `json:"revenueGenerated"`
	SaleDates        []time.Time     `json:"saleDates"`
}

// SalesReport aggregates new-product sales over a period
type SalesReport struct {
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	Month          string                `json:"month,omitempty"`
	Year           int                   `json:"year,omitempty"`
	TotalRevenue   decimal.Decimal       `json:"totalRevenue"`
	TotalItemsSold int                   `json:"totalItemsSold"`
	SalesCount     int                   `json:"salesCount"`
	ProductSummary []ProductSalesSummary `json:"productSummary"`
}

// MonthComparison compares the current month against the previous one
type MonthComparison struct {
	ThisMonth      SalesReport     `json:"thisMonth"`
	LastMonth      SalesReport     `json:"lastMonth"`
	PercentageHike decimal.Decimal `json:"percentageHike"`
}

// RepairTypeSummary aggregates repairs of one product type
type RepairTypeSummary struct {
	RepairsCount    int             `json:"repairsCount"`
	TotalRepairCost decimal.Decimal `json:"totalRepairCost"`
}

// RepairReport aggregates every repair order
type RepairReport struct {
	TotalRepairCost decimal.Decimal                   `json:"totalRepairCost"`
	TotalRepairs    int                               `json:"totalRepairs"`
	StatusSummary   map[RepairStatus]int              `json:"statusSummary"`
	ProductSummary  map[ProductType]RepairTypeSummary `json:"productSummary"`
}

// SecondHandSalesReport aggregates second-hand sales
type SecondHandSalesReport struct {
	TotalSales        decimal.Decimal   `json:"totalSales"`
	TotalQuantitySold int               `json:"totalQuantitySold"`
	Sales             []SaleTransaction `json:"sales"`
}

// RevenueReport sums every revenue source
type RevenueReport struct {
	TotalRevenue                       decimal.Decimal `json:"totalRevenue"`
	TotalRevenueFromSales              decimal.Decimal `json:"totalRevenueFromSales"`
	TotalRevenueFromSecondHandProducts decimal.Decimal `json:"totalRevenueFromSecondHandProducts"`
	TotalRevenueFromRepairServices     decimal.Decimal `json:"totalRevenueFromRepairServices"`
}
