package inventory_test

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test en memoria.
//
// memStore emula la semántica relevante de PostgreSQL para el motor de
// ajustes: locks pesimistas por fila de producto (un mutex por producto) y
// transacciones con commit diferido (las escrituras quedan en staging hasta
// que fn retorna sin error; un error descarta todo). Así los tests de
// concurrencia ejercen el mismo protocolo de bloqueo que la implementación
// real, no una serialización global.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu          sync.Mutex
	products    map[string]*entity.Product
	movements   []*entity.StockMovement
	adjustments []*entity.InventoryAdjustment
	rowLocks    map[string]*sync.Mutex
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{
		products: make(map[string]*entity.Product),
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

func (s *memStore) allMovements() []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

// memTx una transacción con escrituras en staging y locks de fila adquiridos.
type memTx struct {
	store  *memStore
	mu     sync.Mutex
	locked []string

	stocks      map[string]int
	movements   []*entity.StockMovement
	adjustments []*entity.InventoryAdjustment
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
	tx.store.adjustments = append(tx.store.adjustments, tx.adjustments...)
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

// txProducts ProductRepository atado a la tx.
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

// txMovements StockMovementRepository atado a la tx (append en staging).
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

// txAdjustments AdjustmentRepository atado a la tx.
type txAdjustments struct{ tx *memTx }

func (r txAdjustments) Create(_ context.Context, a *entity.InventoryAdjustment) error {
	cp := *a
	r.tx.mu.Lock()
	r.tx.adjustments = append(r.tx.adjustments, &cp)
	r.tx.mu.Unlock()
	return nil
}

func (r txAdjustments) List(context.Context, string, repository.AdjustmentFilters) ([]*entity.InventoryAdjustment, error) {
	return nil, nil
}

// memTxRunner implementa inventory.TxRunner sobre el memStore.
type memTxRunner struct{ store *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	adjustmentRepo repository.AdjustmentRepository,
) error) error {
	tx := newMemTx(r.store)
	if err := fn(txProducts{tx}, txMovements{tx}, txAdjustments{tx}); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

// memAlertRepo AlertRepository en memoria.
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

func (r *memAlertRepo) Resolve(_ context.Context, companyID, alertID string) (*entity.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == alertID && a.CompanyID == companyID {
			now := time.Now()
			a.ResolvedAt = &now
			cp := *a
			return &cp, nil
		}
	}
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

// memAdjustmentRepo AdjustmentRepository atado al pool (solo lecturas en los
// casos de uso; Create ocurre dentro de la tx).
type memAdjustmentRepo struct {
	store *memStore
}

func (r *memAdjustmentRepo) Create(_ context.Context, a *entity.InventoryAdjustment) error {
	cp := *a
	r.store.mu.Lock()
	r.store.adjustments = append(r.store.adjustments, &cp)
	r.store.mu.Unlock()
	return nil
}

func (r *memAdjustmentRepo) List(_ context.Context, companyID string, f repository.AdjustmentFilters) ([]*entity.InventoryAdjustment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.InventoryAdjustment
	for _, a := range r.store.adjustments {
		if a.CompanyID != companyID {
			continue
		}
		if f.ProductID != "" && a.ProductID != f.ProductID {
			continue
		}
		if f.AdjustmentType != "" && a.AdjustmentType != f.AdjustmentType {
			continue
		}
		cp := *a
		out = append(out, &cp)
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
