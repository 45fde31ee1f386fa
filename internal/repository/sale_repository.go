package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository records sales. Every write decrements stock and stores the
// sale record in one transaction, so either every line applies or none does.
type SaleRepository interface {
	// CreateSale decrements stock for every line of sale, fills in the line
	// product names and stores the sale. It returns the stock left per product.
	CreateSale(ctx context.Context, sale *domain.Sale) ([]domain.StockLevel, error)
	ListSales(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error)
	// CreateSecondHandSale decrements second-hand stock, prices sale from the
	// product and stores it. It returns the remaining stock.
	CreateSecondHandSale(ctx context.Context, sale *domain.SaleTransaction) (int, error)
	ListSecondHandSales(ctx context.Context, r domain.DateRange) ([]*domain.SaleTransaction, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// CreateSale applies every line of sale atomically
func (r *saleRepository) CreateSale(ctx context.Context, sale *domain.Sale) ([]domain.StockLevel, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids, quantities := sale.Quantities()
	levels := make([]domain.StockLevel, 0, len(ids))
	names := make(map[uuid.UUID]string, len(ids))

	// ids arrive in a fixed order so crossed sales lock rows consistently
	for _, id := range ids {
		var stock int
		var name string
		err := tx.QueryRowContext(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND stock >= $2
			RETURNING stock, name
		`, id, quantities[id], sale.CreatedAt).Scan(&stock, &name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stockFailure(ctx, tx, "products", domain.ResourceProduct, id, quantities[id])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement product stock: %w", err)
		}
		names[id] = name
		levels = append(levels, domain.StockLevel{ProductID: id, Stock: stock})
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, total_amount, sale_date, created_at)
		VALUES ($1, $2, $3, $4)
	`, sale.ID, sale.TotalAmount, sale.SaleDate, sale.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	for i := range sale.Lines {
		line := &sale.Lines[i]
		line.ProductName = names[line.ProductID]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, position, product_id, product_name, quantity, sale_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sale.ID, i, line.ProductID, line.ProductName, line.Quantity, line.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create sale line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return levels, nil
}

// ListSales retrieves sales in r with their lines, newest first
func (r *saleRepository) ListSales(ctx context.Context, dr domain.DateRange) ([]*domain.Sale, error) {
	where, args := rangeClause("s.sale_date", dr, 1)
	query := fmt.Sprintf(`
		SELECT s.id, s.total_amount, s.sale_date, s.created_at,
		       l.product_id, l.product_name, l.quantity, l.sale_price
		FROM sales s
		JOIN sale_lines l ON l.sale_id = s.id
		%s
		ORDER BY s.sale_date DESC, s.id, l.position
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	var current *domain.Sale
	for rows.Next() {
		var s domain.Sale
		var line domain.SaleLine
		err := rows.Scan(
			&s.ID, &s.TotalAmount, &s.SaleDate, &s.CreatedAt,
			&line.ProductID, &line.ProductName, &line.Quantity, &line.SalePrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if current == nil || current.ID != s.ID {
			current = &s
			sales = append(sales, current)
		}
		current.Lines = append(current.Lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// CreateSecondHandSale applies a single-line second-hand sale atomically
func (r *saleRepository) CreateSecondHandSale(ctx context.Context, sale *domain.SaleTransaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stock int
	var name string
	var price decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		UPDATE second_hand_products SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND stock >= $2
		RETURNING stock, name, price
	`, sale.ProductID, sale.QuantitySold, sale.SaleDate).Scan(&stock, &name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, stockFailure(ctx, tx, "second_hand_products", domain.ResourceSecondHandProduct, sale.ProductID, sale.QuantitySold)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to decrement second-hand stock: %w", err)
	}

	sale.Price(name, price)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO second_hand_sales (id, product_id, product_name, quantity_sold, sale_price, total_amount, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sale.ID, sale.ProductID, sale.ProductName, sale.QuantitySold, sale.SalePrice, sale.TotalAmount, sale.SaleDate)
	if err != nil {
		return 0, fmt.Errorf("failed to create second-hand sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit second-hand sale: %w", err)
	}

	return stock, nil
}

// ListSecondHandSales retrieves second-hand sales in r, newest first
func (r *saleRepository) ListSecondHandSales(ctx context.Context, dr domain.DateRange) ([]*domain.SaleTransaction, error) {
	where, args := rangeClause("sale_date", dr, 1)
	query := fmt.Sprintf(`
		SELECT id, product_id, product_name, quantity_sold, sale_price, total_amount, sale_date
		FROM second_hand_sales
		%s
		ORDER BY sale_date DESC
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list second-hand sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.SaleTransaction{}
	for rows.Next() {
		s := &domain.SaleTransaction{}
		err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.QuantitySold, &s.SalePrice, &s.TotalAmount, &s.SaleDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan second-hand sale: %w", err)
		}
		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating second-hand sales: %w", err)
	}

	return sales, nil
}

// stockFailure explains a conditional decrement that matched no row
func stockFailure(ctx context.Context, tx *sql.Tx, table, resource string, id uuid.UUID, requested int) error {
	var available int
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT stock FROM %s WHERE id = $1`, table), id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(resource, id.String())
	}
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	return &domain.InsufficientStockError{ProductID: id.String(), Requested: requested, Available: available}
}
