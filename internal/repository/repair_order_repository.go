package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
)

// RepairOrderRepository defines the interface for repair order data access.
// Items are stored with their order and are never addressed on their own.
type RepairOrderRepository interface {
	Create(ctx context.Context, order *domain.RepairOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error)
	List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error)
	// Update writes order if its Version still matches the stored one and
	// increments order.Version on success.
	Update(ctx context.Context, order *domain.RepairOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repairOrderRepository struct {
	db *sql.DB
}

// NewRepairOrderRepository creates a new instance of RepairOrderRepository
func NewRepairOrderRepository(db *sql.DB) RepairOrderRepository {
	return &repairOrderRepository{db: db}
}

const repairOrderColumns = `id, customer_name, customer_email, contact_number, receiver_name, items,
	repair_status, repair_cost, expected_amount, technician_name, start_date, completion_date,
	expected_delivery_date, created_at, updated_at, version`

// Create inserts a new repair order together with its items
func (r *repairOrderRepository) Create(ctx context.Context, order *domain.RepairOrder) error {
	query := `
		INSERT INTO repair_orders (` + repairOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.ContactNumber,
		order.ReceiverName,
		asJSON(&order.Items),
		string(order.Status),
		order.RepairCost,
		order.ExpectedAmount,
		order.TechnicianName,
		order.StartDate,
		order.CompletionDate,
		order.ExpectedDeliveryDate,
		order.CreatedAt,
		order.UpdatedAt,
		order.Version,
	)

	if err != nil {
		return fmt.Errorf("failed to create repair order: %w", err)
	}

	return nil
}

// FindByID retrieves a repair order by ID
func (r *repairOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error) {
	query := `SELECT ` + repairOrderColumns + ` FROM repair_orders WHERE id = $1`

	order, err := scanRepairOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
		}
		return nil, fmt.Errorf("failed to find repair order by ID: %w", err)
	}

	return order, nil
}

// List retrieves repair orders, newest first, optionally filtered by status
func (r *repairOrderRepository) List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error) {
	whereClause := ""
	args := []interface{}{}
	if status != nil {
		whereClause = "WHERE repair_status = $1"
		args = append(args, string(*status))
	}

	query := fmt.Sprintf(`SELECT %s FROM repair_orders %s ORDER BY created_at DESC`, repairOrderColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.RepairOrder{}
	for rows.Next() {
		order, err := scanRepairOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repair orders: %w", err)
	}

	return orders, nil
}

// Update writes every mutable column guarded by the version the order was read at
func (r *repairOrderRepository) Update(ctx context.Context, order *domain.RepairOrder) error {
	query := `
		UPDATE repair_orders
		SET customer_name = $3, customer_email = $4, contact_number = $5, receiver_name = $6,
		    items = $7, repair_status = $8, repair_cost = $9, expected_amount = $10,
		    technician_name = $11, completion_date = $12, expected_delivery_date = $13,
		    updated_at = $14, version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.Version,
		order.CustomerName,
		order.CustomerEmail,
		order.ContactNumber,
		order.ReceiverName,
		asJSON(&order.Items),
		string(order.Status),
		order.RepairCost,
		order.ExpectedAmount,
		order.TechnicianName,
		order.CompletionDate,
		order.ExpectedDeliveryDate,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update repair order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM repair_orders WHERE id = $1)`, order.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check repair order: %w", err)
		}
		if !exists {
			return domain.NewNotFoundError(domain.ResourceRepairOrder, order.ID.String())
		}
		return domain.ErrVersionConflict
	}

	order.Version++
	return nil
}

// Delete removes a repair order and its items
func (r *repairOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM repair_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repair order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
	}

	return nil
}

func scanRepairOrder(row rowScanner) (*domain.RepairOrder, error) {
	order := &domain.RepairOrder{}
	var status string
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.ContactNumber,
		&order.ReceiverName,
		asJSON(&order.Items),
		&status,
		&order.RepairCost,
		&order.ExpectedAmount,
		&order.TechnicianName,
		&order.StartDate,
		&order.CompletionDate,
		&order.ExpectedDeliveryDate,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.RepairStatus(status)
	return order, nil
}
