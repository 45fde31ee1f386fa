package service

import (
	"context"
	"fmt"

	"repair-desk/internal/domain"
	"repair-desk/internal/logger"
	"repair-desk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RepairService defines the interface for the repair order lifecycle
type RepairService interface {
	Create(ctx context.Context, input *domain.RepairOrder) (*domain.RepairOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error)
	List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error)
	// UpdateDetails edits customer, delivery and item descriptive fields of an
	// open order. Status, cost and servicing state are left alone.
	UpdateDetails(ctx context.Context, id uuid.UUID, input *domain.RepairOrder) (*domain.RepairOrder, error)
	// TransitionStatus moves the order through the lifecycle. repairCost is
	// required for Completed and ignored for the other targets.
	TransitionStatus(ctx context.Context, id uuid.UUID, status domain.RepairStatus, repairCost *decimal.Decimal) (*domain.RepairOrder, error)
	// MarkItemServiced records that technician finished the item at index.
	// Marking an already serviced item returns the order unchanged.
	MarkItemServiced(ctx context.Context, id uuid.UUID, index int, technician string) (*domain.RepairOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repairService struct {
	repo       repository.RepairOrderRepository
	activities ActivityService
	logger     *zap.Logger
	now        Clock
}

// NewRepairService creates a new instance of RepairService
func NewRepairService(repo repository.RepairOrderRepository, activities ActivityService, logger *zap.Logger) RepairService {
	return &repairService{repo: repo, activities: activities, logger: logger, now: systemClock}
}

func (s *repairService) Create(ctx context.Context, input *domain.RepairOrder) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "CreateRepairOrder")
	defer span.End()

	now := s.now().UTC()
	order := *input
	order.ID = uuid.New()
	order.Status = domain.StatusPending
	order.CompletionDate = nil
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	if order.StartDate.IsZero() {
		order.StartDate = now
	}

	order.Items = make([]domain.RepairItem, len(input.Items))
	copy(order.Items, input.Items)
	for idx := range order.Items {
		order.Items[idx].ServicingCompleted = false
		order.Items[idx].TechnicianName = ""
		order.Items[idx].ServicedAt = nil
	}

	order.Normalize()
	if err := order.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Create(ctx, &order); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("orderID", order.ID.String()))

	s.activities.Record(ctx, domain.ActivityRepair,
		fmt.Sprintf("Repair order %s created for %s with %d item(s).", order.ID, order.CustomerName, order.TotalItems()))
	return &order, nil
}

func (s *repairService) Get(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "GetRepairOrder")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return order, nil
}

func (s *repairService) List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "ListRepairOrders")
	defer span.End()

	if status != nil {
		if _, err := domain.ParseRepairStatus(string(*status)); err != nil {
			return nil, fail(span, err)
		}
		span.SetAttributes(attribute.String("status", string(*status)))
	}

	orders, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fail(span, err)
	}
	return orders, nil
}

func (s *repairService) UpdateDetails(ctx context.Context, id uuid.UUID, input *domain.RepairOrder) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "UpdateRepairOrderDetails")
	defer span.End()
	span.SetAttributes(attribute.String("orderID", id.String()))

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := order.ApplyDetails(input, s.now().UTC()); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fail(span, err)
	}
	return order, nil
}

func (s *repairService) TransitionStatus(ctx context.Context, id uuid.UUID, status domain.RepairStatus, repairCost *decimal.Decimal) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "TransitionRepairStatus")
	defer span.End()
	span.SetAttributes(attribute.String("orderID", id.String()), attribute.String("to", string(status)))

	to, err := domain.ParseRepairStatus(string(status))
	if err != nil {
		return nil, fail(span, err)
	}
	if repairCost != nil && repairCost.IsNegative() {
		return nil, fail(span, domain.NewValidationError("repairCost", "must not be negative"))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	from := order.Status
	if err := order.Transition(to, repairCost, s.now().UTC()); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fail(span, err)
	}

	logger.WithContext(ctx, s.logger).Info("Repair order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.activities.Record(ctx, domain.ActivityRepair,
		fmt.Sprintf("Repair order %s for %s moved from %s to %s.", order.ID, order.CustomerName, from, to))
	return order, nil
}

func (s *repairService) MarkItemServiced(ctx context.Context, id uuid.UUID, index int, technician string) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "MarkRepairItemServiced")
	defer span.End()
	span.SetAttributes(attribute.String("orderID", id.String()), attribute.Int("itemIndex", index))

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	changed, err := order.MarkItemServiced(index, technician, s.now().UTC())
	if err != nil {
		return nil, fail(span, err)
	}
	if !changed {
		return order, nil
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fail(span, err)
	}

	logger.WithContext(ctx, s.logger).Info("Repair item serviced",
		zap.String("order_id", order.ID.String()),
		zap.Int("item_index", index),
		zap.Int("items_remaining", order.ItemsRemaining()),
	)
	return order, nil
}

func (s *repairService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "DeleteRepairOrder")
	defer span.End()
	span.SetAttributes(attribute.String("orderID", id.String()))

	if err := s.repo.Delete(ctx, id); err != nil {
		return fail(span, err)
	}
	return nil
}
