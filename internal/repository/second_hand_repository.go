package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
)

// SecondHandProductRepository defines the interface for second-hand product data access
type SecondHandProductRepository interface {
	Create(ctx context.Context, product *domain.SecondHandProduct) error
	Update(ctx context.Context, product *domain.SecondHandProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error)
	List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error)
}

type secondHandProductRepository struct {
	db *sql.DB
}

// NewSecondHandProductRepository creates a new instance of SecondHandProductRepository
func NewSecondHandProductRepository(db *sql.DB) SecondHandProductRepository {
	return &secondHandProductRepository{db: db}
}

const secondHandColumns = `id, name, description, price, stock, category, brand, images,
	condition, usage_duration, condition_notes, created_at, updated_at`

// Create inserts a new second-hand product
func (r *secondHandProductRepository) Create(ctx context.Context, product *domain.SecondHandProduct) error {
	query := `
		INSERT INTO second_hand_products (` + secondHandColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	images := nonNilStrings(product.Images)
	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.Brand,
		asJSON(&images),
		string(product.Condition),
		product.UsageDuration,
		product.ConditionNotes,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create second-hand product: %w", err)
	}

	return nil
}

// Update replaces the editable fields of an existing second-hand product
func (r *secondHandProductRepository) Update(ctx context.Context, product *domain.SecondHandProduct) error {
	query := `
		UPDATE second_hand_products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, brand = $7,
		    images = $8, condition = $9, usage_duration = $10, condition_notes = $11, updated_at = $12
		WHERE id = $1
	`

	images := nonNilStrings(product.Images)
	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.Brand,
		asJSON(&images),
		string(product.Condition),
		product.UsageDuration,
		product.ConditionNotes,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update second-hand product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, product.ID.String())
	}

	return nil
}

// Delete removes a second-hand product
func (r *secondHandProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM second_hand_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete second-hand product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
	}

	return nil
}

// FindByID retrieves a second-hand product by ID
func (r *secondHandProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error) {
	query := `SELECT ` + secondHandColumns + ` FROM second_hand_products WHERE id = $1`

	product, err := scanSecondHandProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
		}
		return nil, fmt.Errorf("failed to find second-hand product by ID: %w", err)
	}

	return product, nil
}

// List retrieves second-hand products, optionally restricted to one category
func (r *secondHandProductRepository) List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error) {
	whereClause := ""
	args := []interface{}{}
	if category != "" {
		whereClause = "WHERE category = $1"
		args = append(args, category)
	}

	query := fmt.Sprintf(`SELECT %s FROM second_hand_products %s ORDER BY created_at DESC`, secondHandColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list second-hand products: %w", err)
	}
	defer rows.Close()

	products := []*domain.SecondHandProduct{}
	for rows.Next() {
		product, err := scanSecondHandProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan second-hand product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating second-hand products: %w", err)
	}

	return products, nil
}

func scanSecondHandProduct(row rowScanner) (*domain.SecondHandProduct, error) {
	product := &domain.SecondHandProduct{}
	var condition string
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Category,
		&product.Brand,
		asJSON(&product.Images),
		&condition,
		&product.UsageDuration,
		&product.ConditionNotes,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Condition = domain.Condition(condition)
	product.Images = nonNilStrings(product.Images)
	return product, nil
}
