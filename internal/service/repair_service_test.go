package service

import (
	"context"
	"testing"
	"time"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderInput(items ...domain.ProductType) *domain.RepairOrder {
	if len(items) == 0 {
		items = []domain.ProductType{domain.ProductTypeCamera}
	}
	order := &domain.RepairOrder{
		CustomerName:  "  Ravi Kumar ",
		CustomerEmail: "ravi@example.com",
		ContactNumber: "9800000000",
		ReceiverName:  "Desk",
	}
	for _, pt := range items {
		order.Items = append(order.Items, domain.RepairItem{
			ModelNo:             "M-1",
			SerialNo:            "S-" + string(pt),
			Problem:             "does not power on",
			ProductType:         pt,
			SelectedAccessories: []string{"charger"},
			AccessoryDescriptions: map[string]string{
				"charger": "frayed cable",
			},
		})
	}
	return order
}

func createOrder(t *testing.T, ts *testServices, items ...domain.ProductType) *domain.RepairOrder {
	t.Helper()
	order, err := ts.repairs.Create(context.Background(), newOrderInput(items...))
	require.NoError(t, err)
	return order
}

func TestRepairCreate_Defaults(t *testing.T) {
	ts := newTestServices(testNow)
	input := newOrderInput(domain.ProductTypeDrone)
	input.Status = domain.StatusCompleted
	input.Items[0].ServicingCompleted = true

	order, err := ts.repairs.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "Ravi Kumar", order.CustomerName)
	assert.Equal(t, testNow, order.StartDate)
	assert.Equal(t, 1, order.Version)
	assert.False(t, order.Items[0].ServicingCompleted)
	assert.Equal(t, 1, order.ItemsRemaining())
	assert.Contains(t, ts.store.activityTypes(), domain.ActivityRepair)
}

func TestRepairCreate_Validation(t *testing.T) {
	ts := newTestServices(testNow)

	tests := []struct {
		name   string
		mutate func(o *domain.RepairOrder)
		field  string
	}{
		{"no items", func(o *domain.RepairOrder) { o.Items = nil }, "items"},
		{"no customer", func(o *domain.RepairOrder) { o.CustomerName = " " }, "customerName"},
		{"unselected accessory", func(o *domain.RepairOrder) {
			o.Items[0].AccessoryDescriptions = map[string]string{"lens cap": "scratched"}
		}, "items[0].accessoryDescriptions"},
		{"bad image", func(o *domain.RepairOrder) { o.Items[0].Image = "ftp://x/y.png" }, "items[0].image"},
		{"negative cost", func(o *domain.RepairOrder) { o.RepairCost = decimal.NewFromInt(-5) }, "repairCost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := newOrderInput()
			tt.mutate(input)
			_, err := ts.repairs.Create(context.Background(), input)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Empty(t, ts.store.orders)
}

func TestTransition_PendingToCompleted(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	order := createOrder(t, ts)

	ts.setClock(testNow.Add(48 * time.Hour))
	cost := decimal.NewFromInt(45)
	got, err := ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusCompleted, &cost)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletionDate)
	assert.False(t, got.CompletionDate.Before(got.StartDate))
	assert.True(t, got.RepairCost.Equal(cost))
	assert.Equal(t, 2, got.Version)
}

func TestTransition_Errors(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	order := createOrder(t, ts)
	negative := decimal.NewFromInt(-1)

	_, err := ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusCompleted, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusCanceled, &negative)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ts.repairs.TransitionStatus(ctx, order.ID, "Lost", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusPending, nil)
	var trErr *domain.TransitionError
	assert.ErrorAs(t, err, &trErr)

	_, err = ts.repairs.TransitionStatus(ctx, uuid.New(), domain.StatusInProgress, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := ts.repairs.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestTransition_CanceledIgnoresCost(t *testing.T) {
	ts := newTestServices(testNow)
	order := createOrder(t, ts)
	cost := decimal.NewFromInt(99)

	got, err := ts.repairs.TransitionStatus(context.Background(), order.ID, domain.StatusCanceled, &cost)
	require.NoError(t, err)
	assert.True(t, got.RepairCost.IsZero())
	assert.Nil(t, got.CompletionDate)
}

// Feature: repair-desk, Property 6: Terminal orders reject every transition
func TestProperty_TerminalOrdersRejectTransitions(t *testing.T) {
	properties := gopter.NewProperties(nil)
	statuses := []domain.RepairStatus{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCanceled}

	properties.Property("completed and canceled orders never move", prop.ForAll(
		func(terminalIdx, targetIdx int) bool {
			ctx := context.Background()
			ts := newTestServices(testNow)
			order := createOrder(t, ts)

			terminal := []domain.RepairStatus{domain.StatusCompleted, domain.StatusCanceled}[terminalIdx]
			cost := decimal.NewFromInt(10)
			if _, err := ts.repairs.TransitionStatus(ctx, order.ID, terminal, &cost); err != nil {
				return false
			}

			_, err := ts.repairs.TransitionStatus(ctx, order.ID, statuses[targetIdx], &cost)
			got, getErr := ts.repairs.Get(ctx, order.ID)
			return err != nil && getErr == nil && got.Status == terminal
		},
		gen.IntRange(0, 1),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMarkItemServiced(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	order := createOrder(t, ts, domain.ProductTypeCamera, domain.ProductTypeLED)
	assert.Equal(t, 2, order.ItemsRemaining())

	got, err := ts.repairs.MarkItemServiced(ctx, order.ID, 0, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemsRemaining())
	assert.Equal(t, "A", got.TechnicianName)
	assert.Equal(t, "A", got.Items[0].TechnicianName)
	require.NotNil(t, got.Items[0].ServicedAt)

	ts.setClock(testNow.Add(time.Hour))
	again, err := ts.repairs.MarkItemServiced(ctx, order.ID, 0, "B")
	require.NoError(t, err)
	assert.Equal(t, 1, again.ItemsRemaining())
	assert.Equal(t, "A", again.Items[0].TechnicianName)
	assert.Equal(t, got.Version, again.Version)

	_, err = ts.repairs.MarkItemServiced(ctx, order.ID, 1, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ts.repairs.MarkItemServiced(ctx, order.ID, 5, "A")
	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, domain.ResourceRepairItem, nfErr.Resource)
}

// Feature: repair-desk, Property 7: Servicing is irreversible whatever the order status
func TestProperty_ServicingIsIrreversible(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("serviced items stay serviced through later operations", prop.ForAll(
		func(itemCount int, picks []int) bool {
			ctx := context.Background()
			ts := newTestServices(testNow)
			types := make([]domain.ProductType, itemCount)
			for i := range types {
				types[i] = domain.ProductTypeOther
			}
			order := createOrder(t, ts, types...)

			serviced := map[int]bool{}
			for step, pick := range picks {
				idx := pick % itemCount
				if step == len(picks)/2 {
					cost := decimal.NewFromInt(1)
					if _, err := ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusCompleted, &cost); err != nil {
						return false
					}
				}
				got, err := ts.repairs.MarkItemServiced(ctx, order.ID, idx, "tech")
				if err != nil {
					return false
				}
				serviced[idx] = true
				for i := range got.Items {
					if got.Items[i].ServicingCompleted != serviced[i] {
						return false
					}
				}
				if got.ItemsRemaining() != itemCount-len(serviced) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.SliceOfN(6, gen.IntRange(0, 100)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	order := createOrder(t, ts, domain.ProductTypeCamera, domain.ProductTypeDrone)
	_, err := ts.repairs.MarkItemServiced(ctx, order.ID, 0, "A")
	require.NoError(t, err)

	update := newOrderInput(domain.ProductTypeCamera, domain.ProductTypeDrone, domain.ProductTypeLED)
	update.CustomerName = "Ravi K."
	update.Items[0].Problem = "lens stuck"
	update.Items[0].ServicingCompleted = false

	got, err := ts.repairs.UpdateDetails(ctx, order.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Ravi K.", got.CustomerName)
	assert.Equal(t, "lens stuck", got.Items[0].Problem)
	assert.True(t, got.Items[0].ServicingCompleted)
	assert.Equal(t, 2, got.ItemsRemaining())
	assert.Equal(t, domain.StatusPending, got.Status)

	cost := decimal.NewFromInt(20)
	_, err = ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusCompleted, &cost)
	require.NoError(t, err)

	_, err = ts.repairs.UpdateDetails(ctx, order.ID, update)
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
}

func TestRepairUpdate_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	order := createOrder(t, ts)

	stale, err := ts.repairs.Get(ctx, order.ID)
	require.NoError(t, err)

	_, err = ts.repairs.TransitionStatus(ctx, order.ID, domain.StatusInProgress, nil)
	require.NoError(t, err)

	require.NoError(t, stale.Transition(domain.StatusCanceled, nil, testNow))
	assert.ErrorIs(t, ts.repairs.repo.Update(ctx, stale), domain.ErrVersionConflict)
}

func TestRepairList_FiltersByStatus(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(testNow)
	first := createOrder(t, ts)
	createOrder(t, ts)
	_, err := ts.repairs.TransitionStatus(ctx, first.ID, domain.StatusInProgress, nil)
	require.NoError(t, err)

	inProgress := domain.StatusInProgress
	orders, err := ts.repairs.List(ctx, &inProgress)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)

	bogus := domain.RepairStatus("Shipped")
	_, err = ts.repairs.List(ctx, &bogus)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, ts.repairs.Delete(ctx, first.ID))
	assert.ErrorIs(t, ts.repairs.Delete(ctx, first.ID), domain.ErrNotFound)
}
