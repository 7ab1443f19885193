// Package orders implementa el coordinador de fulfillment de órdenes
// multi-ítem del canal externo de pedidos.
package orders

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/application/cache"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita el fulfillment atados a esa tx.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// OrderItemInput línea solicitada por el canal externo.
type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// FulfillOrderInput entrada del fulfillment de una orden.
type FulfillOrderInput struct {
	CompanyID       string
	CustomerPhone   string
	Items           []OrderItemInput
	DeliveryAddress string
	Source          string // identificador del canal externo
}

// FulfilledItemResult stock resultante de un ítem tras el débito commiteado.
type FulfilledItemResult struct {
	ProductID string
	Quantity  int
	NewStock  int
}

// FulfillOrderResult resultado de una orden commiteada.
type FulfillOrderResult struct {
	OrderID string
	Items   []FulfilledItemResult
}

// FulfillmentUseCase orquesta una orden multi-ítem en tres fases:
//
//  1. Pre-chequeo consultivo sin locks, para fallar rápido con un detalle por
//     ítem. Solo estrecha la ventana de carrera, no la elimina.
//  2. Fase autoritativa: una transacción que bloquea las filas de todos los
//     productos en orden ascendente de id (la única defensa contra deadlocks
//     entre órdenes concurrentes que comparten productos), revalida bajo lock
//     y, o debita todo el stock y crea la orden con sus ítems, o no toca nada.
//  3. Post-commit best-effort: evaluación de umbrales y notificación por ítem.
//     Una falla aquí no revierte la orden; a lo sumo se pierde un aviso.
type FulfillmentUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository // atado al pool, para el pre-chequeo
	orderRepo   repository.OrderRepository   // atado al pool, para lecturas
	alerts      *inventory.AlertUseCase
	publisher   inventory.Publisher
	readCache   *cache.Cache
	log         *logger.Logger
}

// NewFulfillmentUseCase construye el coordinador de fulfillment.
func NewFulfillmentUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	alerts *inventory.AlertUseCase,
	publisher inventory.Publisher,
	readCache *cache.Cache,
	log *logger.Logger,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		alerts:      alerts,
		publisher:   publisher,
		readCache:   readCache,
		log:         log,
	}
}

// fulfilledItem foto de un ítem debitado, para la fase post-commit.
type fulfilledItem struct {
	productID     string
	quantity      int
	newQuantity   int
	minStockAlert int
	movementID    string
}

// FulfillOrder valida disponibilidad, debita atómicamente el stock de todos
// los ítems y crea la orden, o falla con InsufficientStockError detallando los
// faltantes sin tocar ningún stock. La operación es todo-o-nada respecto a
// stock y persistencia de la orden; no lo es respecto a alertas/notificación.
func (uc *FulfillmentUseCase) FulfillOrder(ctx context.Context, in FulfillOrderInput) (*FulfillOrderResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Fase 1: pre-chequeo consultivo, sin locks.
	if err := uc.precheck(ctx, in); err != nil {
		return nil, err
	}

	// Fase 2: transacción autoritativa.
	orderID := uuid.New().String()
	fulfilled := make([]fulfilledItem, 0, len(in.Items))

	err := uc.txRunner.RunOrder(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Locks en orden ascendente de id de producto para prevenir deadlocks
		// entre órdenes concurrentes que comparten productos.
		sorted := make([]OrderItemInput, len(in.Items))
		copy(sorted, in.Items)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

		locked := make(map[string]*entity.Product, len(sorted))
		var shortfalls []domain.StockShortfall
		for _, item := range sorted {
			product, err := productRepo.GetForUpdate(ctx, in.CompanyID, item.ProductID)
			if err != nil {
				return err
			}
			locked[item.ProductID] = product
			if product.StockQuantity < item.Quantity {
				shortfalls = append(shortfalls, domain.StockShortfall{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.StockQuantity,
				})
			}
		}
		if len(shortfalls) > 0 {
			// Aborta la transacción completa: ningún stock fue tocado.
			return &domain.InsufficientStockError{Items: shortfalls}
		}

		now := time.Now()
		order := &entity.Order{
			ID:              orderID,
			CompanyID:       in.CompanyID,
			CustomerPhone:   in.CustomerPhone,
			OrderStatus:     entity.OrderStatusPending,
			DeliveryAddress: in.DeliveryAddress,
			Source:          in.Source,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}

		for _, item := range in.Items {
			product := locked[item.ProductID]
			newQuantity := product.StockQuantity - item.Quantity

			if err := productRepo.UpdateStock(ctx, in.CompanyID, product.ID, newQuantity); err != nil {
				return err
			}

			movement := &entity.StockMovement{
				ID:             uuid.New().String(),
				CompanyID:      in.CompanyID,
				ProductID:      product.ID,
				Type:           entity.MovementTypeOut,
				QuantityChange: item.Quantity,
				QuantityBefore: product.StockQuantity,
				QuantityAfter:  newQuantity,
				Reason:         "Fulfillment de orden " + in.Source,
				ReferenceType:  entity.ReferenceOrderFulfillment,
				ReferenceID:    orderID,
				CreatedAt:      now,
			}
			if err := movementRepo.Create(ctx, movement); err != nil {
				return err
			}

			// Precio snapshot al momento del fulfillment; no se relee después.
			if err := orderRepo.CreateItem(ctx, &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			}); err != nil {
				return err
			}

			fulfilled = append(fulfilled, fulfilledItem{
				productID:     product.ID,
				quantity:      item.Quantity,
				newQuantity:   newQuantity,
				minStockAlert: product.MinStockAlert,
				movementID:    movement.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fase 3: best-effort por ítem. La orden ya es durable.
	uc.afterCommit(ctx, in.CompanyID, fulfilled)

	result := &FulfillOrderResult{OrderID: orderID}
	for _, item := range fulfilled {
		result.Items = append(result.Items, FulfilledItemResult{
			ProductID: item.productID,
			Quantity:  item.quantity,
			NewStock:  item.newQuantity,
		})
	}
	return result, nil
}

func validateInput(in FulfillOrderInput) error {
	if in.CompanyID == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		// Ítems duplicados del mismo producto se rechazan: el canal debe
		// consolidar cantidades antes de enviar.
		if seen[item.ProductID] {
			return domain.ErrInvalidInput
		}
		seen[item.ProductID] = true
	}
	return nil
}

// precheck lee cantidades fuera de todo lock y produce la lista de faltantes
// por ítem. Es solo consultivo: la validación autoritativa es bajo lock.
func (uc *FulfillmentUseCase) precheck(ctx context.Context, in FulfillOrderInput) error {
	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := uc.productRepo.ListByIDs(ctx, in.CompanyID, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var shortfalls []domain.StockShortfall
	for _, item := range in.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			shortfalls = append(shortfalls, domain.StockShortfall{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: 0,
				Error:     "producto no encontrado",
			})
			continue
		}
		if product.StockQuantity < item.Quantity {
			shortfalls = append(shortfalls, domain.StockShortfall{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.StockQuantity,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &domain.InsufficientStockError{Items: shortfalls}
	}
	return nil
}

func (uc *FulfillmentUseCase) afterCommit(ctx context.Context, companyID string, fulfilled []fulfilledItem) {
	for _, item := range fulfilled {
		if _, err := uc.alerts.Evaluate(ctx, companyID, item.productID, item.newQuantity, item.minStockAlert); err != nil {
			uc.log.Warn().Err(err).
				Str("product_id", item.productID).
				Msg("evaluación de alertas post-fulfillment falló")
		}
		uc.readCache.Delete(cache.StockKey(companyID, item.productID))

		evt := inventory.StockChangedEvent{
			ProductID:   item.productID,
			NewQuantity: item.newQuantity,
			MovementID:  item.movementID,
			Timestamp:   time.Now(),
		}
		go uc.publisher.Publish(inventory.StockChannel(companyID), evt)
	}
}

// GetOrderDetails devuelve una orden con sus ítems.
func (uc *FulfillmentUseCase) GetOrderDetails(ctx context.Context, companyID, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// UpdateOrderStatus cambia el estado de una orden validando el whitelist de estados.
func (uc *FulfillmentUseCase) UpdateOrderStatus(ctx context.Context, companyID, orderID, status string) (*entity.Order, error) {
	if !entity.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.UpdateStatus(ctx, companyID, orderID, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}
