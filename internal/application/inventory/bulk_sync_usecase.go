package inventory

import (
	"context"
	"errors"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// Operaciones de sincronización masiva.
const (
	SyncOpAdd      = "add"
	SyncOpSubtract = "subtract"
	SyncOpSet      = "set"
)

// SyncItem ítem de una sincronización masiva de inventario.
type SyncItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"` // add, subtract, set
}

// SyncItemResult resultado por ítem de la sincronización.
type SyncItemResult struct {
	ProductID string `json:"productId"`
	Success   bool   `json:"success"`
	NewStock  int    `json:"newStock,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkSyncUseCase procesa lotes de ajustes provenientes del canal de
// integración. Cada ítem es un ajuste independiente con su propia transacción:
// la falla de un ítem nunca aborta el resto del lote. Esta granularidad
// por-ítem es deliberadamente distinta de la del fulfillment de órdenes, que
// es todo-o-nada.
type BulkSyncUseCase struct {
	engine *AdjustmentUseCase
}

// NewBulkSyncUseCase construye el caso de uso de sincronización masiva.
func NewBulkSyncUseCase(engine *AdjustmentUseCase) *BulkSyncUseCase {
	return &BulkSyncUseCase{engine: engine}
}

// SyncInventory aplica cada ítem como un ajuste independiente y devuelve el
// resultado por ítem. Una resta que dejaría stock negativo falla ese ítem con
// stock insuficiente: la regla de no-negativo del motor aplica uniforme (no se
// recorta en silencio a cero).
func (uc *BulkSyncUseCase) SyncInventory(ctx context.Context, companyID, userID string, items []SyncItem) []SyncItemResult {
	results := make([]SyncItemResult, 0, len(items))
	for _, item := range items {
		results = append(results, uc.syncOne(ctx, companyID, userID, item))
	}
	return results
}

func (uc *BulkSyncUseCase) syncOne(ctx context.Context, companyID, userID string, item SyncItem) SyncItemResult {
	if item.ProductID == "" || item.Quantity < 0 {
		return SyncItemResult{ProductID: item.ProductID, Error: domain.ErrInvalidInput.Error()}
	}

	var (
		res *AdjustmentResult
		err error
	)
	switch item.Operation {
	case SyncOpAdd, SyncOpSubtract:
		delta := item.Quantity
		if item.Operation == SyncOpSubtract {
			delta = -delta
		}
		res, err = uc.engine.ApplyAdjustment(ctx, AdjustmentInput{
			CompanyID:     companyID,
			ProductID:     item.ProductID,
			Delta:         delta,
			Reason:        "Sincronización de inventario",
			UserID:        userID,
			ReferenceType: entity.ReferenceBulkSync,
		})
	case SyncOpSet:
		res, err = uc.engine.SetStock(ctx, SetStockInput{
			CompanyID:   companyID,
			ProductID:   item.ProductID,
			NewQuantity: item.Quantity,
			Reason:      "Sincronización de inventario",
			UserID:      userID,
		})
	default:
		return SyncItemResult{ProductID: item.ProductID, Error: "operación desconocida: " + item.Operation}
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SyncItemResult{ProductID: item.ProductID, Error: "producto no encontrado"}
		}
		return SyncItemResult{ProductID: item.ProductID, Error: err.Error()}
	}
	return SyncItemResult{ProductID: item.ProductID, Success: true, NewStock: res.NewQuantity}
}
