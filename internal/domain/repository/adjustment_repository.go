package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// AdjustmentFilters filtros opcionales para listar ajustes administrativos.
type AdjustmentFilters struct {
	ProductID      string
	AdjustmentType string
	StartDate      *time.Time
	EndDate        *time.Time
}

// AdjustmentRepository define el puerto de persistencia para ajustes
// administrativos de inventario (DIP).
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.InventoryAdjustment) error
	List(ctx context.Context, companyID string, filters AdjustmentFilters) ([]*entity.InventoryAdjustment, error)
}
