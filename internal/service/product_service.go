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

// ProductService defines the interface for new-product catalog operations
type ProductService interface {
	Create(ctx context.Context, input *domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, category string) ([]*domain.Product, error)
	// Update replaces the editable fields of the product with those of input
	Update(ctx context.Context, id uuid.UUID, input *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// LowStock lists products with stock below threshold. A threshold <= 0
	// selects the configured default.
	LowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
}

type productService struct {
	repo              repository.ProductRepository
	activities        ActivityService
	lowStockThreshold int
	logger            *zap.Logger
	now               Clock
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	repo repository.ProductRepository,
	activities ActivityService,
	lowStockThreshold int,
	logger *zap.Logger,
) ProductService {
	return &productService{
		repo:              repo,
		activities:        activities,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
		now:               systemClock,
	}
}

func (s *productService) Create(ctx context.Context, input *domain.Product) (*domain.Product, error) {
	ctx, span := startSpan(ctx, "CreateProduct")
	defer span.End()

	now := s.now().UTC()
	product := *input
	product.ID = uuid.New()
	product.Name = strings.TrimSpace(product.Name)
	product.Images = nonNil(product.Images)
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := product.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("productID", product.ID.String()))

	s.activities.Record(ctx, domain.ActivityCreate,
		fmt.Sprintf("Product %q created with ID %s.", product.Name, product.ID))
	return &product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ctx, span := startSpan(ctx, "GetProduct")
	defer span.End()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, category string) ([]*domain.Product, error) {
	ctx, span := startSpan(ctx, "ListProducts")
	defer span.End()

	products, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fail(span, err)
	}
	return products, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, input *domain.Product) (*domain.Product, error) {
	ctx, span := startSpan(ctx, "UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("productID", id.String()))

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
	existing.UpdatedAt = s.now().UTC()

	if err := existing.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fail(span, err)
	}

	s.activities.Record(ctx, domain.ActivityUpdate,
		fmt.Sprintf("Product %q updated.", existing.Name))
	return existing, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "DeleteProduct")
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
		fmt.Sprintf("Product %q deleted.", existing.Name))
	return nil
}

func (s *productService) LowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	ctx, span := startSpan(ctx, "ListLowStockProducts")
	defer span.End()

	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	span.SetAttributes(attribute.Int("threshold", threshold))

	products, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fail(span, err)
	}
	return products, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
