package orders_test

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test en memoria para el fulfillment. Misma semántica que los del
// motor de ajustes: locks pesimistas por fila de producto y transacciones con
// commit diferido, para que los tests de concurrencia ejerzan el protocolo de
// bloqueo real (incluido el orden ascendente de adquisición).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	orders    map[string]*entity.Order
	items     []*entity.OrderItem
	rowLocks  map[string]*sync.Mutex
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.Order),
		rowLocks: make(map[string]*sync.Mutex),
	}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
		s.rowLocks[p.ID] = &sync.Mutex{}
	}
	return s
}

func (s *memStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rowLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.rowLocks[id] = m
	}
	return m
}

func (s *memStore) snapshot(companyID, id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.CompanyID != companyID {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemsFor(orderID string) []*entity.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.OrderItem
	for _, it := range s.items {
		if it.OrderID == orderID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out
}

type memTx struct {
	store  *memStore
	mu     sync.Mutex
	locked []string

	stocks    map[string]int
	movements []*entity.StockMovement
	orders    []*entity.Order
	items     []*entity.OrderItem
}

func newMemTx(store *memStore) *memTx {
	return &memTx{store: store, stocks: make(map[string]int)}
}

func (tx *memTx) commit() {
	tx.store.mu.Lock()
	for id, q := range tx.stocks {
		tx.store.products[id].StockQuantity = q
		tx.store.products[id].UpdatedAt = time.Now()
	}
	tx.store.movements = append(tx.store.movements, tx.movements...)
	for _, o := range tx.orders {
		tx.store.orders[o.ID] = o
	}
	tx.store.items = append(tx.store.items, tx.items...)
	tx.store.mu.Unlock()
	tx.releaseLocks()
}

func (tx *memTx) rollback() {
	tx.releaseLocks()
}

func (tx *memTx) releaseLocks() {
	for _, id := range tx.locked {
		tx.store.lockFor(id).Unlock()
	}
	tx.locked = nil
}

type txProducts struct{ tx *memTx }

func (r txProducts) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	return r.tx.store.snapshot(companyID, id), nil
}

func (r txProducts) GetForUpdate(_ context.Context, companyID, id string) (*entity.Product, error) {
	r.tx.store.lockFor(id).Lock()
	r.tx.mu.Lock()
	r.tx.locked = append(r.tx.locked, id)
	r.tx.mu.Unlock()

	p := r.tx.store.snapshot(companyID, id)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if q, ok := r.tx.stocks[id]; ok {
		p.StockQuantity = q
	}
	return p, nil
}

func (r txProducts) UpdateStock(_ context.Context, companyID, id string, quantity int) error {
	if r.tx.store.snapshot(companyID, id) == nil {
		return domain.ErrNotFound
	}
	r.tx.mu.Lock()
	r.tx.stocks[id] = quantity
	r.tx.mu.Unlock()
	return nil
}

func (r txProducts) ListByIDs(_ context.Context, companyID string, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p := r.tx.store.snapshot(companyID, id); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type txMovements struct{ tx *memTx }

func (r txMovements) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	r.tx.mu.Lock()
	r.tx.movements = append(r.tx.movements, &cp)
	r.tx.mu.Unlock()
	return nil
}

func (r txMovements) ListByProduct(context.Context, string, string, int, int) ([]*entity.StockMovement, error) {
	return nil, nil
}

type txOrders struct{ tx *memTx }

func (r txOrders) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	r.tx.mu.Lock()
	r.tx.orders = append(r.tx.orders, &cp)
	r.tx.mu.Unlock()
	return nil
}

func (r txOrders) CreateItem(_ context.Context, it *entity.OrderItem) error {
	cp := *it
	r.tx.mu.Lock()
	r.tx.items = append(r.tx.items, &cp)
	r.tx.mu.Unlock()
	return nil
}

func (r txOrders) GetByID(context.Context, string, string) (*entity.Order, error) {
	return nil, nil
}

func (r txOrders) UpdateStatus(context.Context, string, string, string) (*entity.Order, error) {
	return nil, nil
}

// memTxRunner implementa orders.TxRunner sobre el memStore.
type memTxRunner struct{ store *memStore }

func (r *memTxRunner) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx := newMemTx(r.store)
	if err := fn(txProducts{tx}, txMovements{tx}, txOrders{tx}); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

// poolProducts / poolOrders lecturas fuera de tx (atadas al "pool").
type poolProducts struct{ store *memStore }

func (r poolProducts) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	return r.store.snapshot(companyID, id), nil
}

func (r poolProducts) GetForUpdate(_ context.Context, companyID, id string) (*entity.Product, error) {
	p := r.store.snapshot(companyID, id)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r poolProducts) UpdateStock(context.Context, string, string, int) error { return nil }

func (r poolProducts) ListByIDs(_ context.Context, companyID string, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p := r.store.snapshot(companyID, id); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type poolOrders struct{ store *memStore }

func (r poolOrders) Create(context.Context, *entity.Order) error         { return nil }
func (r poolOrders) CreateItem(context.Context, *entity.OrderItem) error { return nil }

func (r poolOrders) GetByID(_ context.Context, companyID, id string) (*entity.Order, error) {
	r.store.mu.Lock()
	o, ok := r.store.orders[id]
	if !ok || o.CompanyID != companyID {
		r.store.mu.Unlock()
		return nil, nil
	}
	cp := *o
	r.store.mu.Unlock()
	cp.Items = nil
	for _, it := range r.store.itemsFor(id) {
		cp.Items = append(cp.Items, *it)
	}
	return &cp, nil
}

func (r poolOrders) UpdateStatus(_ context.Context, companyID, id, status string) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok || o.CompanyID != companyID {
		return nil, nil
	}
	o.OrderStatus = status
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, nil
}

// memAlertRepo AlertRepository mínimo para la fase post-commit.
type memAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.LowStockAlert
}

func (r *memAlertRepo) Create(_ context.Context, a *entity.LowStockAlert) error {
	cp := *a
	r.mu.Lock()
	r.alerts = append(r.alerts, &cp)
	r.mu.Unlock()
	return nil
}

func (r *memAlertRepo) MarkNotified(_ context.Context, alertID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == alertID {
			a.NotificationSent = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memAlertRepo) Resolve(context.Context, string, string) (*entity.LowStockAlert, error) {
	return nil, domain.ErrNotFound
}

func (r *memAlertRepo) GetUnresolvedByProduct(_ context.Context, companyID, productID string) ([]*entity.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LowStockAlert
	for _, a := range r.alerts {
		if a.CompanyID == companyID && a.ProductID == productID && a.ResolvedAt == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAlertRepo) ListActive(_ context.Context, companyID string) ([]*entity.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LowStockAlert
	for _, a := range r.alerts {
		if a.CompanyID == companyID && a.ResolvedAt == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakePublisher registra los eventos publicados.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	channel string
	payload any
}

func (p *fakePublisher) Publish(channel string, event any) {
	p.mu.Lock()
	p.events = append(p.events, publishedEvent{channel: channel, payload: event})
	p.mu.Unlock()
}

func (p *fakePublisher) byChannel(channel string) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []any
	for _, e := range p.events {
		if e.channel == channel {
			out = append(out, e.payload)
		}
	}
	return out
}
