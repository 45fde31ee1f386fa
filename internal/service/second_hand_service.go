package service

import (
	"context"
	"fmt"
	"strings"

	"repair-desk/internal/domain"
	"repair-desk/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SecondHandService defines the interface for second-hand catalog operations
type SecondHandService interface {
	Create(ctx context.Context, input *domain.SecondHandProduct) (*domain.SecondHandProduct, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error)
	List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error)
	Update(ctx context.Context, id uuid.UUID, input *domain.SecondHandProduct) (*domain.SecondHandProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type secondHandService struct {
	repo       repository.SecondHandProductRepository
	activities ActivityService
	logger     *zap.Logger
	now        Clock
}

// NewSecondHandService creates a new instance of SecondHandService
func NewSecondHandService(
	repo repository.SecondHandProductRepository,
	activities ActivityService,
	logger *zap.Logger,
) SecondHandService {
	return &secondHandService{repo: repo, activities: activities, logger: logger, now: systemClock}
}

func (s *secondHandService) Create(ctx context.Context, input *domain.SecondHandProduct) (*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "CreateSecondHandProduct")
	defer span.End()

	condition, err := domain.ParseCondition(string(input.Condition))
	if err != nil {
		return nil, fail(span, err)
	}

	now := s.now().UTC()
	product := *input
	product.ID = uuid.New()
	product.Name = strings.TrimSpace(product.Name)
	product.Condition = condition
	product.Images = nonNil(product.Images)
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := product.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, fail(span, err)
	}

	s.activities.Record(ctx, domain.ActivityCreate,
		fmt.Sprintf("Second-hand product %q created with ID %s.", product.Name, product.ID))
	return &product, nil
}

func (s *secondHandService) Get(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "GetSecondHandProduct")
	defer span.End()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return product, nil
}

func (s *secondHandService) List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "ListSecondHandProducts")
	defer span.End()

	products, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fail(span, err)
	}
	return products, nil
}

func (s *secondHandService) Update(ctx context.Context, id uuid.UUID, input *domain.SecondHandProduct) (*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "UpdateSecondHandProduct")
	defer span.End()
	span.SetAttributes(attribute.String("productID", id.String()))

	condition, err := domain.ParseCondition(string(input.Condition))
	if err != nil {
		return nil, fail(span, err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.Category = input.Category
	existing.Brand = input.Brand
	existing.Images = nonNil(input.Images)
	existing.Condition = condition
	existing.UsageDuration = input.UsageDuration
	existing.ConditionNotes = input.ConditionNotes
	existing.UpdatedAt = s.now().UTC()

	if err := existing.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fail(span, err)
	}

	s.activities.Record(ctx, domain.ActivityUpdate,
		fmt.Sprintf("Second-hand product %q updated.", existing.Name))
	return existing, nil
}

func (s *secondHandService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "DeleteSecondHandProduct")
	defer span.End()
	span.SetAttributes(attribute.String("productID", id.String()))

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fail(span, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fail(span, err)
	}

	s.activities.Record(ctx, domain.ActivityDelete,
		fmt.Sprintf("Second-hand product %q deleted.", existing.Name))
	return nil
}
