package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

// fixedClock returns a Clock pinned to t
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// memStore is an in-memory stand-in for the repositories. A single mutex
// gives sales the same all-or-nothing behavior as a database transaction.
type memStore struct {
	mu              sync.Mutex
	products        map[uuid.UUID]*domain.Product
	secondHand      map[uuid.UUID]*domain.SecondHandProduct
	orders          map[uuid.UUID]*domain.RepairOrder
	sales           []*domain.Sale
	secondHandSales []*domain.SaleTransaction
	activities      []*domain.Activity
	failActivities  bool
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[uuid.UUID]*domain.Product{},
		secondHand: map[uuid.UUID]*domain.SecondHandProduct{},
		orders:     map[uuid.UUID]*domain.RepairOrder{},
	}
}

type memProducts struct{ s *memStore }

func (m memProducts) Create(ctx context.Context, p *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *p
	m.s.products[p.ID] = &cp
	return nil
}

func (m memProducts) Update(ctx context.Context, p *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[p.ID]; !ok {
		return domain.NewNotFoundError(domain.ResourceProduct, p.ID.String())
	}
	cp := *p
	m.s.products[p.ID] = &cp
	return nil
}

func (m memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return domain.NewNotFoundError(domain.ResourceProduct, id.String())
	}
	delete(m.s.products, id)
	return nil
}

func (m memProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceProduct, id.String())
	}
	cp := *p
	return &cp, nil
}

func (m memProducts) List(ctx context.Context, category string) ([]*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.s.products {
		if category == "" || p.Category == category {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memProducts) ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.s.products {
		if p.Stock < threshold {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Stock < out[b].Stock })
	return out, nil
}

type memSecondHand struct{ s *memStore }

func (m memSecondHand) Create(ctx context.Context, p *domain.SecondHandProduct) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *p
	m.s.secondHand[p.ID] = &cp
	return nil
}

func (m memSecondHand) Update(ctx context.Context, p *domain.SecondHandProduct) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.secondHand[p.ID]; !ok {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, p.ID.String())
	}
	cp := *p
	m.s.secondHand[p.ID] = &cp
	return nil
}

func (m memSecondHand) Delete(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.secondHand[id]; !ok {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
	}
	delete(m.s.secondHand, id)
	return nil
}

func (m memSecondHand) FindByID(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.secondHand[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
	}
	cp := *p
	return &cp, nil
}

func (m memSecondHand) List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.SecondHandProduct{}
	for _, p := range m.s.secondHand {
		if category == "" || p.Category == category {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memOrders struct{ s *memStore }

func cloneOrder(o *domain.RepairOrder) *domain.RepairOrder {
	cp := *o
	cp.Items = make([]domain.RepairItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (m memOrders) Create(ctx context.Context, o *domain.RepairOrder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m memOrders) FindByID(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
	}
	return cloneOrder(o), nil
}

func (m memOrders) List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.RepairOrder{}
	for _, o := range m.s.orders {
		if status == nil || o.Status == *status {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (m memOrders) Update(ctx context.Context, o *domain.RepairOrder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.orders[o.ID]
	if !ok {
		return domain.NewNotFoundError(domain.ResourceRepairOrder, o.ID.String())
	}
	if stored.Version != o.Version {
		return domain.ErrVersionConflict
	}
	o.Version++
	m.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m memOrders) Delete(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.orders[id]; !ok {
		return domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
	}
	delete(m.s.orders, id)
	return nil
}

type memSales struct{ s *memStore }

func (m memSales) CreateSale(ctx context.Context, sale *domain.Sale) ([]domain.StockLevel, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	ids, qty := sale.Quantities()
	for _, id := range ids {
		p, ok := m.s.products[id]
		if !ok {
			return nil, domain.NewNotFoundError(domain.ResourceProduct, id.String())
		}
		if p.Stock < qty[id] {
			return nil, &domain.InsufficientStockError{ProductID: id.String(), Requested: qty[id], Available: p.Stock}
		}
	}

	levels := make([]domain.StockLevel, 0, len(ids))
	for _, id := range ids {
		p := m.s.products[id]
		p.Stock -= qty[id]
		levels = append(levels, domain.StockLevel{ProductID: id, Stock: p.Stock})
	}
	for i := range sale.Lines {
		sale.Lines[i].ProductName = m.s.products[sale.Lines[i].ProductID].Name
	}
	m.s.sales = append(m.s.sales, sale)
	return levels, nil
}

func (m memSales) ListSales(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Sale{}
	for _, sale := range m.s.sales {
		if r.Contains(sale.SaleDate) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (m memSales) CreateSecondHandSale(ctx context.Context, sale *domain.SaleTransaction) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.secondHand[sale.ProductID]
	if !ok {
		return 0, domain.NewNotFoundError(domain.ResourceSecondHandProduct, sale.ProductID.String())
	}
	if p.Stock < sale.QuantitySold {
		return 0, &domain.InsufficientStockError{ProductID: p.ID.String(), Requested: sale.QuantitySold, Available: p.Stock}
	}
	p.Stock -= sale.QuantitySold
	sale.Price(p.Name, p.Price)
	m.s.secondHandSales = append(m.s.secondHandSales, sale)
	return p.Stock, nil
}

func (m memSales) ListSecondHandSales(ctx context.Context, r domain.DateRange) ([]*domain.SaleTransaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.SaleTransaction{}
	for _, sale := range m.s.secondHandSales {
		if r.Contains(sale.SaleDate) {
			out = append(out, sale)
		}
	}
	return out, nil
}

type memActivities struct{ s *memStore }

func (m memActivities) Create(ctx context.Context, a *domain.Activity) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failActivities {
		return errStoreDown
	}
	m.s.activities = append(m.s.activities, a)
	return nil
}

func (m memActivities) List(ctx context.Context, limit int) ([]*domain.Activity, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Activity{}
	for i := len(m.s.activities) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.s.activities[i])
	}
	return out, nil
}

func (s *memStore) activityTypes() []domain.ActivityType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.ActivityType, 0, len(s.activities))
	for _, a := range s.activities {
		types = append(types, a.Type)
	}
	return types
}

// testServices wires every service to one memStore with a pinned clock
type testServices struct {
	store      *memStore
	activities *activityService
	products   *productService
	secondHand *secondHandService
	sales      *saleService
	repairs    *repairService
	reports    *reportService
}

func newTestServices(now time.Time) *testServices {
	store := newMemStore()
	log := zap.NewNop()
	clock := fixedClock(now)

	activities := &activityService{repo: memActivities{store}, logger: log, now: clock}
	return &testServices{
		store:      store,
		activities: activities,
		products:   &productService{repo: memProducts{store}, activities: activities, lowStockThreshold: 10, logger: log, now: clock},
		secondHand: &secondHandService{repo: memSecondHand{store}, activities: activities, logger: log, now: clock},
		sales:      &saleService{repo: memSales{store}, activities: activities, logger: log, now: clock},
		repairs:    &repairService{repo: memOrders{store}, activities: activities, logger: log, now: clock},
		reports:    &reportService{sales: memSales{store}, repairs: memOrders{store}, logger: log, now: clock, loc: time.UTC},
	}
}

// setClock moves every service to t
func (ts *testServices) setClock(t time.Time) {
	clock := fixedClock(t)
	ts.activities.now = clock
	ts.products.now = clock
	ts.secondHand.now = clock
	ts.sales.now = clock
	ts.repairs.now = clock
	ts.reports.now = clock
}
