package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
)

// Tipos de referencia que originan un movimiento.
const (
	ReferenceInitialStock     = "initial_stock"
	ReferenceManualAdjustment = "manual_adjustment"
	ReferenceOrderFulfillment = "order_fulfillment"
	ReferenceBulkSync         = "bulk_sync"
)

// StockMovement es una entrada inmutable del ledger de stock: registra un
// cambio de cantidad con el antes y el después leídos bajo el lock de fila.
// Nunca se actualiza ni se borra. QuantityAfter - QuantityBefore debe ser
// igual al delta firmado que implican Type y QuantityChange.
type StockMovement struct {
	ID             string
	CompanyID      string
	ProductID      string
	Type           string // in, out, adjustment
	QuantityChange int    // magnitud sin signo
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	UserID         string // identidad actuante (opaca para el core)
	ReferenceType  string // initial_stock, manual_adjustment, order_fulfillment, bulk_sync
	ReferenceID    string // ej. ID de la orden que originó la salida
	CreatedAt      time.Time
}

// SignedDelta devuelve el delta firmado que implica el movimiento.
func (m *StockMovement) SignedDelta() int {
	if m.Type == MovementTypeOut {
		return -m.QuantityChange
	}
	return m.QuantityChange
}
