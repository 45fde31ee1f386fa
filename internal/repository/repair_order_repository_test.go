package repository

import (
	"context"
	"testing"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.RepairOrder {
	ts := dbNow()
	return &domain.RepairOrder{
		ID:            uuid.New(),
		CustomerName:  "Dana",
		ContactNumber: "555-0101",
		Items: []domain.RepairItem{
			{
				ModelNo:               "X100",
				ProductType:           domain.ProductTypeCamera,
				SelectedAccessories:   []string{"charger"},
				AccessoryDescriptions: map[string]string{"charger": "frayed cable"},
			},
			{ModelNo: "D2", ProductType: domain.ProductTypeDrone, SelectedAccessories: []string{}, AccessoryDescriptions: map[string]string{}},
		},
		Status:    domain.StatusPending,
		StartDate: ts,
		CreatedAt: ts,
		UpdatedAt: ts,
		Version:   1,
	}
}

func TestRepairOrderRepository_RoundTrip(t *testing.T) {
	repo := NewRepairOrderRepository(testDB)
	ctx := context.Background()

	order := newTestOrder()
	expected := decimal.NewFromInt(60)
	order.ExpectedAmount = &expected
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.CustomerName, got.CustomerName)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "frayed cable", got.Items[0].AccessoryDescriptions["charger"])
	assert.Equal(t, domain.ProductTypeDrone, got.Items[1].ProductType)
	require.NotNil(t, got.ExpectedAmount)
	assert.True(t, got.ExpectedAmount.Equal(expected))
	assert.Nil(t, got.CompletionDate)
	assert.True(t, got.StartDate.Equal(order.StartDate))
}

func TestRepairOrderRepository_UpdateChecksVersion(t *testing.T) {
	repo := NewRepairOrderRepository(testDB)
	ctx := context.Background()

	order := newTestOrder()
	require.NoError(t, repo.Create(ctx, order))

	first, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	_, err = first.MarkItemServiced(0, "Ana", dbNow())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.Transition(domain.StatusCanceled, nil, dbNow()))
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.True(t, stored.Items[0].ServicingCompleted)
	assert.Equal(t, "Ana", stored.TechnicianName)
	require.NotNil(t, stored.Items[0].ServicedAt)
}

func TestRepairOrderRepository_CompletionPersists(t *testing.T) {
	repo := NewRepairOrderRepository(testDB)
	ctx := context.Background()

	order := newTestOrder()
	require.NoError(t, repo.Create(ctx, order))

	cost := decimal.NewFromInt(45)
	require.NoError(t, order.Transition(domain.StatusCompleted, &cost, dbNow()))
	require.NoError(t, repo.Update(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, got.RepairCost.Equal(cost))
	require.NotNil(t, got.CompletionDate)
	assert.False(t, got.CompletionDate.Before(got.StartDate))

	status := domain.StatusCompleted
	listed, err := repo.List(ctx, &status)
	require.NoError(t, err)
	found := false
	for _, o := range listed {
		assert.Equal(t, domain.StatusCompleted, o.Status)
		found = found || o.ID == order.ID
	}
	assert.True(t, found)
}

func TestRepairOrderRepository_NotFound(t *testing.T) {
	repo := NewRepairOrderRepository(testDB)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Update(ctx, newTestOrder())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
