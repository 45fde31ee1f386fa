package domain

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantity bounds stock levels and sold quantities. Stock columns are 32-bit.
const MaxQuantity = math.MaxInt32

// SaleLine is one product line of a sale
type SaleLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	SalePrice   decimal.Decimal `json:"salePrice"`
}

// Subtotal is quantity × salePrice
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is an immutable record of a completed new-product sale
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	Lines       []SaleLine      `json:"products"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	SaleDate    time.Time       `json:"saleDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewSale validates lines and builds a sale whose total is the sum of the line subtotals
func NewSale(lines []SaleLine, now time.Time) (*Sale, error) {
	if len(lines) == 0 {
		return nil, NewValidationError("products", "at least one line is required")
	}

	total := decimal.Zero
	owned := make([]SaleLine, len(lines))
	perProduct := make(map[uuid.UUID]int, len(lines))
	for idx, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, NewValidationError(fmt.Sprintf("products[%d].productId", idx), "is required")
		}
		if line.Quantity <= 0 {
			return nil, NewValidationError(fmt.Sprintf("products[%d].quantity", idx), "must be greater than 0")
		}
		if line.Quantity > MaxQuantity-perProduct[line.ProductID] {
			return nil, NewValidationError(fmt.Sprintf("products[%d].quantity", idx),
				fmt.Sprintf("total quantity per product must not exceed %d", MaxQuantity))
		}
		perProduct[line.ProductID] += line.Quantity
		if line.SalePrice.IsNegative() {
			return nil, NewValidationError(fmt.Sprintf("products[%d].salePrice", idx), "must not be negative")
		}
		owned[idx] = line
		total = total.Add(line.Subtotal())
	}

	return &Sale{
		ID:          uuid.New(),
		Lines:       owned,
		TotalAmount: total,
		SaleDate:    now,
		CreatedAt:   now,
	}, nil
}

// Quantities sums the requested quantity per product. The ids come back in
// byte order so that concurrent sales lock the same products in the same order.
func (s *Sale) Quantities() ([]uuid.UUID, map[uuid.UUID]int) {
	order := make([]uuid.UUID, 0, len(s.Lines))
	qty := make(map[uuid.UUID]int, len(s.Lines))
	for _, line := range s.Lines {
		if _, seen := qty[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		qty[line.ProductID] += line.Quantity
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(order[i][:], order[j][:]) < 0
	})
	return order, qty
}

// StockLevel is the stock of a product after a sale
type StockLevel struct {
	ProductID uuid.UUID `json:"productId"`
	Stock     int       `json:"stock"`
}

// SaleTransaction is an immutable record of a second-hand product sale
type SaleTransaction struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	QuantitySold int             `json:"quantitySold"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	SaleDate     time.Time       `json:"saleDate"`
}

// NewSaleTransaction validates the request for a second-hand sale. Name, price and
// total are filled in by the ledger once the product is resolved.
func NewSaleTransaction(productID uuid.UUID, quantity int, now time.Time) (*SaleTransaction, error) {
	if productID == uuid.Nil {
		return nil, NewValidationError("productId", "is required")
	}
	if quantity <= 0 {
		return nil, NewValidationError("quantitySold", "must be greater than 0")
	}
	if quantity > MaxQuantity {
		return nil, NewValidationError("quantitySold", fmt.Sprintf("must not exceed %d", MaxQuantity))
	}
	return &SaleTransaction{
		ID:           uuid.New(),
		ProductID:    productID,
		QuantitySold: quantity,
		SaleDate:     now,
	}, nil
}

// Price sets the sale price from the product and recomputes the total
func (t *SaleTransaction) Price(name string, price decimal.Decimal) {
	t.ProductName = name
	t.SalePrice = price
	t.TotalAmount = price.Mul(decimal.NewFromInt(int64(t.QuantitySold)))
}

// DateRange bounds report and listing queries. Zero values are open ends; To is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}
