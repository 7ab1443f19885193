package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
// QuantityChange es un delta con signo: positivo entra stock, negativo sale.
type CreateAdjustmentRequest struct {
	ProductID      string           `json:"product_id"`
	AdjustmentType string           `json:"adjustment_type"` // restock | damage | loss | correction
	QuantityChange int              `json:"quantity_change"`
	Reason         string           `json:"reason"`
	CostImpact     *decimal.Decimal `json:"cost_impact,omitempty"`
}

// AdjustmentDTO un ajuste administrativo en respuestas HTTP.
type AdjustmentDTO struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	AdjustmentType string           `json:"adjustment_type"`
	QuantityChange int              `json:"quantity_change"`
	Reason         string           `json:"reason,omitempty"`
	CostImpact     *decimal.Decimal `json:"cost_impact,omitempty"`
	CreatedBy      string           `json:"created_by,omitempty"`
	MovementID     string           `json:"movement_id"`
	CreatedAt      time.Time        `json:"created_at"`
}

// AdjustmentToDTO mapea un ajuste a su DTO.
func AdjustmentToDTO(a *entity.InventoryAdjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID:             a.ID,
		ProductID:      a.ProductID,
		AdjustmentType: a.AdjustmentType,
		QuantityChange: a.QuantityChange,
		Reason:         a.Reason,
		CostImpact:     a.CostImpact,
		CreatedBy:      a.CreatedBy,
		MovementID:     a.MovementID,
		CreatedAt:      a.CreatedAt,
	}
}
