package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ajuste administrativo de inventario.
const (
	AdjustmentTypeRestock    = "restock"
	AdjustmentTypeDamage     = "damage"
	AdjustmentTypeLoss       = "loss"
	AdjustmentTypeCorrection = "correction"
)

// ValidAdjustmentType verifica que el tipo de ajuste sea conocido.
func ValidAdjustmentType(t string) bool {
	switch t {
	case AdjustmentTypeRestock, AdjustmentTypeDamage, AdjustmentTypeLoss, AdjustmentTypeCorrection:
		return true
	}
	return false
}

// InventoryAdjustment ajuste manual/administrativo de stock.
// Siempre emparejado 1:1 con el StockMovement producido en la misma transacción.
type InventoryAdjustment struct {
	ID             string
	CompanyID      string
	ProductID      string
	AdjustmentType string
	QuantityChange int              // delta firmado
	Reason         string
	CostImpact     *decimal.Decimal // impacto en costo, opcional
	CreatedBy      string
	MovementID     string // StockMovement generado por la misma transacción
	CreatedAt      time.Time
}
