package repository

import (
	"context"
	"testing"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(name string, stock int, price decimal.Decimal) *domain.Product {
	ts := dbNow()
	return &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		Category:  "cameras",
		Brand:     "Acme",
		Images:    []string{"https://img.test/" + name + ".png"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Feature: repair-desk, Property 10: Product creation preserves attributes
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, cents int64, stock int) bool {
			product := newTestProduct(name, stock, decimal.New(cents, -2))
			product.Description = description

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			got, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			return got.Name == product.Name &&
				got.Description == product.Description &&
				got.Price.Equal(product.Price) &&
				got.Stock == product.Stock &&
				got.Category == product.Category &&
				assert.ObjectsAreEqual(product.Images, got.Images) &&
				got.CreatedAt.Equal(product.CreatedAt)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) <= 100 }),
		gen.AlphaString(),
		gen.Int64Range(0, 9_999_999),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("tripod", 4, decimal.NewFromInt(20))
	require.NoError(t, repo.Create(ctx, product))

	product.Stock = 9
	product.Images = nil
	require.NoError(t, repo.Update(ctx, product))

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
	assert.Equal(t, []string{}, got.Images)

	require.NoError(t, repo.Delete(ctx, product.ID))

	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Delete(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Update(ctx, product)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_ListFilters(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	category := "filters-" + uuid.NewString()
	low := newTestProduct("low", 1, decimal.NewFromInt(5))
	low.Category = category
	high := newTestProduct("high", 500, decimal.NewFromInt(5))
	high.Category = category
	require.NoError(t, repo.Create(ctx, low))
	require.NoError(t, repo.Create(ctx, high))

	listed, err := repo.List(ctx, category)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	lowStock, err := repo.ListLowStock(ctx, 10)
	require.NoError(t, err)
	ids := map[uuid.UUID]bool{}
	for _, p := range lowStock {
		assert.Less(t, p.Stock, 10)
		ids[p.ID] = true
	}
	assert.True(t, ids[low.ID])
	assert.False(t, ids[high.ID])
}

func TestSecondHandProductRepository_RoundTrip(t *testing.T) {
	repo := NewSecondHandProductRepository(testDB)
	ctx := context.Background()

	ts := dbNow()
	product := &domain.SecondHandProduct{
		ID:             uuid.New(),
		Name:           "Used gimbal",
		Price:          decimal.RequireFromString("80.50"),
		Stock:          2,
		Category:       "gimbals-" + uuid.NewString(),
		Condition:      domain.ConditionGood,
		UsageDuration:  "1 year",
		ConditionNotes: "light scratches",
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	require.NoError(t, repo.Create(ctx, product))

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionGood, got.Condition)
	assert.Equal(t, "1 year", got.UsageDuration)
	assert.True(t, got.Price.Equal(product.Price))

	listed, err := repo.List(ctx, product.Category)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
