package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a new product in the shop catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Category    string          `json:"category" db:"category"`
	Brand       string          `json:"brand" db:"brand"`
	Images      []string        `json:"images" db:"images"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Validate checks the catalog invariants of a product
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if p.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	if p.Stock > MaxQuantity {
		return NewValidationError("stock", fmt.Sprintf("must not exceed %d", MaxQuantity))
	}
	return nil
}

// Condition grades a second-hand product
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
)

// ParseCondition converts s to a Condition. An empty string yields ConditionExcellent.
func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.TrimSpace(s)); c {
	case "":
		return ConditionExcellent, nil
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return c, nil
	default:
		return "", NewValidationError("condition", "must be one of Excellent, Good, Fair, Poor")
	}
}

// SecondHandProduct is a used item taken in for resale
type SecondHandProduct struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Stock          int             `json:"stock" db:"stock"`
	Category       string          `json:"category" db:"category"`
	Brand          string          `json:"brand" db:"brand"`
	Images         []string        `json:"images" db:"images"`
	Condition      Condition       `json:"condition" db:"condition"`
	UsageDuration  string          `json:"usageDuration" db:"usage_duration"`
	ConditionNotes string          `json:"conditionNotes" db:"condition_notes"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// Validate checks the catalog invariants of a second-hand product
func (p *SecondHandProduct) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if p.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	if p.Stock > MaxQuantity {
		return NewValidationError("stock", fmt.Sprintf("must not exceed %d", MaxQuantity))
	}
	if _, err := ParseCondition(string(p.Condition)); err != nil {
		return err
	}
	return nil
}
