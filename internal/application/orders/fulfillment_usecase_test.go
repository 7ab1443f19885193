package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/cache"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/orders"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

const (
	companyA = "00000000-0000-0000-0000-0000000000aa"
	prodA    = "00000000-0000-0000-0000-0000000000a1"
	prodB    = "00000000-0000-0000-0000-0000000000b2"
	prodC    = "00000000-0000-0000-0000-0000000000c3"
)

func producto(id string, stock, minAlert int, price float64) *entity.Product {
	return &entity.Product{
		ID:            id,
		CompanyID:     companyA,
		SKU:           "SKU-" + id[len(id)-2:],
		Name:          "Producto " + id[len(id)-2:],
		Price:         decimal.NewFromFloat(price),
		StockQuantity: stock,
		MinStockAlert: minAlert,
		IsAvailable:   true,
	}
}

func buildFulfillment(store *memStore) (*orders.FulfillmentUseCase, *memAlertRepo, *fakePublisher) {
	alertRepo := &memAlertRepo{}
	pub := &fakePublisher{}
	alerts := inventory.NewAlertUseCase(alertRepo, pub)
	uc := orders.NewFulfillmentUseCase(
		&memTxRunner{store: store},
		poolProducts{store},
		poolOrders{store},
		alerts,
		pub,
		cache.New(time.Minute, nil),
		logger.NewNop(),
	)
	return uc, alertRepo, pub
}

// ──────────────────────────────────────────────────────────────────────────────
// Fulfillment todo-o-nada
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfillOrder_DebitaYCreaOrdenConItems(t *testing.T) {
	store := newMemStore(producto(prodA, 10, 0, 1500), producto(prodB, 5, 0, 800))
	uc, _, _ := buildFulfillment(store)

	res, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
		CompanyID:     companyA,
		CustomerPhone: "+573001112233",
		Source:        "whatsapp",
		Items: []orders.OrderItemInput{
			{ProductID: prodA, Quantity: 3},
			{ProductID: prodB, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)

	assert.Equal(t, 7, store.stock(prodA))
	assert.Equal(t, 3, store.stock(prodB))

	// Resultado por ítem con el stock resultante.
	require.Len(t, res.Items, 2)
	assert.Equal(t, 7, res.Items[0].NewStock)
	assert.Equal(t, 3, res.Items[1].NewStock)

	// Orden pendiente con líneas y precio snapshot.
	order, err := uc.GetOrderDetails(context.Background(), companyA, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, "whatsapp", order.Source)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromFloat(1500)),
		"el precio del ítem es el snapshot al momento del fulfillment")

	// Una entrada de ledger por ítem, ligada a la orden.
	assert.Equal(t, 2, store.movementCount())
	store.mu.Lock()
	for _, m := range store.movements {
		assert.Equal(t, entity.MovementTypeOut, m.Type)
		assert.Equal(t, entity.ReferenceOrderFulfillment, m.ReferenceType)
		assert.Equal(t, res.OrderID, m.ReferenceID)
	}
	store.mu.Unlock()
}

// Tres ítems, el tercero sin stock suficiente: ningún stock se toca, no se
// crea orden y el ledger queda vacío.
func TestFulfillOrder_UnItemCorto_NoTocaNada(t *testing.T) {
	store := newMemStore(
		producto(prodA, 10, 0, 100),
		producto(prodB, 10, 0, 100),
		producto(prodC, 1, 0, 100),
	)
	uc, _, _ := buildFulfillment(store)

	_, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
		CompanyID: companyA,
		Source:    "n8n",
		Items: []orders.OrderItemInput{
			{ProductID: prodA, Quantity: 2},
			{ProductID: prodB, Quantity: 2},
			{ProductID: prodC, Quantity: 5},
		},
	})
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, prodC, insufficient.Items[0].ProductID)
	assert.Equal(t, 5, insufficient.Items[0].Requested)
	assert.Equal(t, 1, insufficient.Items[0].Available)

	assert.Equal(t, 10, store.stock(prodA), "ningún ítem debe debitarse")
	assert.Equal(t, 10, store.stock(prodB))
	assert.Equal(t, 1, store.stock(prodC))
	assert.Equal(t, 0, store.movementCount())
	assert.Equal(t, 0, store.orderCount())
}

func TestFulfillOrder_ProductoInexistente_DetalleEnFaltantes(t *testing.T) {
	store := newMemStore(producto(prodA, 10, 0, 100))
	uc, _, _ := buildFulfillment(store)

	_, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
		CompanyID: companyA,
		Source:    "whatsapp",
		Items: []orders.OrderItemInput{
			{ProductID: prodA, Quantity: 1},
			{ProductID: "00000000-0000-0000-0000-00000000dead", Quantity: 1},
		},
	})
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, "producto no encontrado", insufficient.Items[0].Error)
	assert.Equal(t, 10, store.stock(prodA))
}

func TestFulfillOrder_ValidacionDeEntrada(t *testing.T) {
	store := newMemStore(producto(prodA, 10, 0, 100))
	uc, _, _ := buildFulfillment(store)
	ctx := context.Background()

	casos := []struct {
		nombre string
		input  orders.FulfillOrderInput
	}{
		{"sin items", orders.FulfillOrderInput{CompanyID: companyA}},
		{"cantidad cero", orders.FulfillOrderInput{
			CompanyID: companyA,
			Items:     []orders.OrderItemInput{{ProductID: prodA, Quantity: 0}},
		}},
		{"cantidad negativa", orders.FulfillOrderInput{
			CompanyID: companyA,
			Items:     []orders.OrderItemInput{{ProductID: prodA, Quantity: -1}},
		}},
		{"producto duplicado", orders.FulfillOrderInput{
			CompanyID: companyA,
			Items: []orders.OrderItemInput{
				{ProductID: prodA, Quantity: 1},
				{ProductID: prodA, Quantity: 2},
			},
		}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := uc.FulfillOrder(ctx, c.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, store.movementCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: dos órdenes que comparten productos en orden opuesto
// ──────────────────────────────────────────────────────────────────────────────

// La orden 1 lista [A, B] y la orden 2 lista [B, A]. Sin el orden ascendente
// de adquisición de locks esto sería el deadlock clásico; ambas deben
// completarse y el stock debe reflejar las dos.
func TestFulfillOrder_OrdenesCruzadas_SinDeadlock(t *testing.T) {
	store := newMemStore(producto(prodA, 100, 0, 100), producto(prodB, 100, 0, 100))
	uc, _, _ := buildFulfillment(store)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	run := func(items []orders.OrderItemInput) {
		defer wg.Done()
		_, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
			CompanyID: companyA,
			Source:    "whatsapp",
			Items:     items,
		})
		errs <- err
	}
	wg.Add(2)
	go run([]orders.OrderItemInput{{ProductID: prodA, Quantity: 5}, {ProductID: prodB, Quantity: 7}})
	go run([]orders.OrderItemInput{{ProductID: prodB, Quantity: 5}, {ProductID: prodA, Quantity: 7}})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock: las órdenes cruzadas no terminaron")
	}
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 88, store.stock(prodA))
	assert.Equal(t, 88, store.stock(prodB))
	assert.Equal(t, 4, store.movementCount())
	assert.Equal(t, 2, store.orderCount())
}

// Muchas órdenes concurrentes contra stock limitado: las que ganan debitan,
// las demás fallan limpio y el stock nunca queda negativo ni sobrevendido.
func TestFulfillOrder_Concurrente_SinSobreventa(t *testing.T) {
	store := newMemStore(producto(prodA, 10, 0, 100))
	uc, _, _ := buildFulfillment(store)

	var wg sync.WaitGroup
	errs := make(chan error, 15)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
				CompanyID: companyA,
				Source:    "whatsapp",
				Items:     []orders.OrderItemInput{{ProductID: prodA, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	exitos := 0
	for err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, exitos, "solo hay stock para 10 órdenes de 1 unidad")
	assert.Equal(t, 0, store.stock(prodA))
	assert.Equal(t, 10, store.orderCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Post-commit y ciclo de vida de la orden
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfillOrder_PostCommit_AlertaPorItemDebitado(t *testing.T) {
	store := newMemStore(producto(prodA, 12, 10, 100))
	uc, alertRepo, pub := buildFulfillment(store)

	_, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
		CompanyID: companyA,
		Source:    "whatsapp",
		Items:     []orders.OrderItemInput{{ProductID: prodA, Quantity: 4}},
	})
	require.NoError(t, err)

	alerts, _ := alertRepo.ListActive(context.Background(), companyA)
	require.Len(t, alerts, 1, "8 <= 10 debe generar warning")
	assert.Equal(t, entity.AlertLevelWarning, alerts[0].AlertLevel)

	eventos := pub.byChannel(inventory.AlertChannel(companyA))
	require.Len(t, eventos, 1)
	evt := eventos[0].(inventory.StockAlertEvent)
	assert.Equal(t, 8, evt.CurrentStock)
	assert.Equal(t, 10, evt.MinStock)
}

func TestUpdateOrderStatus_Transiciones(t *testing.T) {
	store := newMemStore(producto(prodA, 10, 0, 100))
	uc, _, _ := buildFulfillment(store)

	res, err := uc.FulfillOrder(context.Background(), orders.FulfillOrderInput{
		CompanyID: companyA,
		Source:    "whatsapp",
		Items:     []orders.OrderItemInput{{ProductID: prodA, Quantity: 1}},
	})
	require.NoError(t, err)

	order, err := uc.UpdateOrderStatus(context.Background(), companyA, res.OrderID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, order.OrderStatus)

	_, err = uc.UpdateOrderStatus(context.Background(), companyA, res.OrderID, "enviado-al-espacio")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateOrderStatus(context.Background(), companyA, "00000000-0000-0000-0000-00000000dead", entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOrderDetails_Inexistente(t *testing.T) {
	store := newMemStore()
	uc, _, _ := buildFulfillment(store)

	_, err := uc.GetOrderDetails(context.Background(), companyA, "00000000-0000-0000-0000-00000000dead")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
