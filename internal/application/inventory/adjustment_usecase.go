package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/application/cache"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// StockChannel devuelve el canal de cambios de stock de una empresa.
func StockChannel(companyID string) string {
	return "stock_updates:" + companyID
}

// StockChangedEvent payload publicado tras cada mutación de stock commiteada.
type StockChangedEvent struct {
	ProductID   string    `json:"productId"`
	NewQuantity int       `json:"newQuantity"`
	MovementID  string    `json:"movementId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AdjustmentInput entrada para un ajuste relativo de stock.
// Delta puede ser positivo, negativo o cero (cero es no-op sin movimiento).
// AdjustmentType y CostImpact son opcionales: si AdjustmentType viene, se crea
// además el registro administrativo InventoryAdjustment 1:1 con el movimiento.
type AdjustmentInput struct {
	CompanyID      string
	ProductID      string
	Delta          int
	Reason         string
	UserID         string
	ReferenceType  string // por defecto manual_adjustment
	AdjustmentType string
	CostImpact     *decimal.Decimal
}

// SetStockInput entrada para fijar el stock absoluto de un producto.
// El delta se calcula internamente como NewQuantity - actual, leído bajo lock.
type SetStockInput struct {
	CompanyID   string
	ProductID   string
	NewQuantity int
	Reason      string
	UserID      string
}

// AdjustmentResult resultado de una mutación de stock commiteada.
type AdjustmentResult struct {
	ProductID    string
	NewQuantity  int
	MovementID   string // vacío si el delta fue cero (no-op)
	AdjustmentID string // vacío si no se pidió registro administrativo
	AlertLevel   string

	minStockAlert int // umbral leído bajo el lock, para la evaluación post-commit
}

// AdjustmentUseCase es el motor de ajustes: aplica un delta firmado a un
// producto dentro de una transacción con lock pesimista de fila, escribiendo
// la nueva cantidad y la entrada del ledger juntas. Nunca persiste stock
// negativo. Tras el commit evalúa umbrales de forma síncrona e informa al
// dispatcher de notificaciones de forma asíncrona.
type AdjustmentUseCase struct {
	txRunner       TxRunner
	adjustmentRepo repository.AdjustmentRepository // atado al pool, solo lecturas
	alerts         *AlertUseCase
	publisher      Publisher
	cache          *cache.Cache
	log            *logger.Logger
}

// NewAdjustmentUseCase construye el motor de ajustes.
func NewAdjustmentUseCase(
	txRunner TxRunner,
	adjustmentRepo repository.AdjustmentRepository,
	alerts *AlertUseCase,
	publisher Publisher,
	readCache *cache.Cache,
	log *logger.Logger,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner:       txRunner,
		adjustmentRepo: adjustmentRepo,
		alerts:         alerts,
		publisher:      publisher,
		cache:          readCache,
		log:            log,
	}
}

// ListAdjustments lista los ajustes administrativos con filtros opcionales.
func (uc *AdjustmentUseCase) ListAdjustments(ctx context.Context, companyID string, filters repository.AdjustmentFilters) ([]*entity.InventoryAdjustment, error) {
	return uc.adjustmentRepo.List(ctx, companyID, filters)
}

// ApplyAdjustment aplica un delta firmado al stock de un producto.
//
// Dentro de la transacción: bloquea la fila del producto (SELECT FOR UPDATE),
// lee la cantidad bajo el lock, calcula la nueva y rechaza con
// InsufficientStockError si quedaría negativa. QuantityBefore/QuantityAfter
// del movimiento reflejan el valor leído bajo el lock, nunca uno anterior.
// Cualquier error de persistencia revierte la transacción completa.
func (uc *AdjustmentUseCase) ApplyAdjustment(ctx context.Context, in AdjustmentInput) (*AdjustmentResult, error) {
	if in.CompanyID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.AdjustmentType != "" && !entity.ValidAdjustmentType(in.AdjustmentType) {
		return nil, domain.ErrInvalidInput
	}
	if in.ReferenceType == "" {
		in.ReferenceType = entity.ReferenceManualAdjustment
	}

	result := &AdjustmentResult{ProductID: in.ProductID}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		adjustmentRepo repository.AdjustmentRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.CompanyID, in.ProductID)
		if err != nil {
			return err
		}
		return uc.applyLocked(ctx, product, in, result, productRepo, movementRepo, adjustmentRepo)
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, in.CompanyID, result)
	return result, nil
}

// SetStock fija la cantidad absoluta de un producto. El delta se calcula bajo
// el lock de fila, por lo que dos SetStock concurrentes quedan serializados y
// el ledger refleja el orden real de aplicación.
func (uc *AdjustmentUseCase) SetStock(ctx context.Context, in SetStockInput) (*AdjustmentResult, error) {
	if in.CompanyID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == "" {
		in.Reason = "Ajuste manual de stock"
	}

	result := &AdjustmentResult{ProductID: in.ProductID}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		adjustmentRepo repository.AdjustmentRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.CompanyID, in.ProductID)
		if err != nil {
			return err
		}
		adjustIn := AdjustmentInput{
			CompanyID:     in.CompanyID,
			ProductID:     in.ProductID,
			Delta:         in.NewQuantity - product.StockQuantity,
			Reason:        in.Reason,
			UserID:        in.UserID,
			ReferenceType: entity.ReferenceManualAdjustment,
		}
		return uc.applyLocked(ctx, product, adjustIn, result, productRepo, movementRepo, adjustmentRepo)
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, in.CompanyID, result)
	return result, nil
}

// applyLocked aplica el delta sobre un producto ya bloqueado por la tx actual.
// Escribe cantidad, movimiento y (opcional) registro administrativo.
func (uc *AdjustmentUseCase) applyLocked(
	ctx context.Context,
	product *entity.Product,
	in AdjustmentInput,
	result *AdjustmentResult,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	adjustmentRepo repository.AdjustmentRepository,
) error {
	result.minStockAlert = product.MinStockAlert

	if in.Delta == 0 {
		// No-op: sin entrada en el ledger.
		result.NewQuantity = product.StockQuantity
		return nil
	}

	newQuantity := product.StockQuantity + in.Delta
	if newQuantity < 0 {
		return domain.NewInsufficientStockError(product.ID, product.Name, -in.Delta, product.StockQuantity)
	}

	if err := productRepo.UpdateStock(ctx, in.CompanyID, product.ID, newQuantity); err != nil {
		return err
	}

	movementType := entity.MovementTypeIn
	quantityChange := in.Delta
	if in.Delta < 0 {
		movementType = entity.MovementTypeOut
		quantityChange = -in.Delta
	}
	movement := &entity.StockMovement{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		ProductID:      product.ID,
		Type:           movementType,
		QuantityChange: quantityChange,
		QuantityBefore: product.StockQuantity,
		QuantityAfter:  newQuantity,
		Reason:         in.Reason,
		UserID:         in.UserID,
		ReferenceType:  in.ReferenceType,
		CreatedAt:      time.Now(),
	}
	if err := movementRepo.Create(ctx, movement); err != nil {
		return err
	}

	if in.AdjustmentType != "" {
		adjustment := &entity.InventoryAdjustment{
			ID:             uuid.New().String(),
			CompanyID:      in.CompanyID,
			ProductID:      product.ID,
			AdjustmentType: in.AdjustmentType,
			QuantityChange: in.Delta,
			Reason:         in.Reason,
			CostImpact:     in.CostImpact,
			CreatedBy:      in.UserID,
			MovementID:     movement.ID,
			CreatedAt:      time.Now(),
		}
		if err := adjustmentRepo.Create(ctx, adjustment); err != nil {
			return err
		}
		result.AdjustmentID = adjustment.ID
	}

	result.NewQuantity = newQuantity
	result.MovementID = movement.ID
	return nil
}

// afterCommit corre las consecuencias post-commit de una mutación: evaluación
// síncrona de umbrales, invalidación del cache de lectura y publicación
// asíncrona del evento de cambio. Nada de esto revierte el stock ya durable.
func (uc *AdjustmentUseCase) afterCommit(ctx context.Context, companyID string, result *AdjustmentResult) {
	level, err := uc.alerts.Evaluate(ctx, companyID, result.ProductID, result.NewQuantity, result.minStockAlert)
	if err != nil {
		uc.log.Warn().Err(err).
			Str("product_id", result.ProductID).
			Msg("evaluación de alertas post-commit falló")
	}
	result.AlertLevel = level

	uc.cache.Delete(cache.StockKey(companyID, result.ProductID))

	if result.MovementID != "" {
		evt := StockChangedEvent{
			ProductID:   result.ProductID,
			NewQuantity: result.NewQuantity,
			MovementID:  result.MovementID,
			Timestamp:   time.Now(),
		}
		go uc.publisher.Publish(StockChannel(companyID), evt)
	}
}
