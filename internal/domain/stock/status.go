// Package stock contiene las reglas puras de clasificación de stock.
// Sin estado ni persistencia: funciones de (cantidad, umbral) a nivel.
package stock

import "github.com/tu-usuario/stock-ledger/internal/domain/entity"

// Estados de stock para rutas de lectura (granularidad gruesa).
const (
	StatusNormal     = "normal"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"
)

// Status deriva el estado de stock de un producto para rutas de lectura.
// Nunca es la autoridad para crear alertas; eso es del evaluador de umbrales,
// que usa la escala fina warning/critical.
func Status(quantity, minThreshold int, isAvailable bool) string {
	if !isAvailable || quantity == 0 {
		return StatusOutOfStock
	}
	if quantity <= minThreshold {
		return StatusLowStock
	}
	return StatusNormal
}

// AlertLevel clasifica la cantidad contra el umbral mínimo, en este orden de
// prioridad: out_of_stock si la cantidad es 0; critical si cantidad <= 50% del
// umbral; warning si cantidad <= umbral; normal en otro caso.
// La comparación del 50% se hace en enteros exactos (2*q <= min) para evitar
// redondeos de punto flotante en el borde.
func AlertLevel(quantity, minThreshold int) string {
	switch {
	case quantity == 0:
		return entity.AlertLevelOutOfStock
	case 2*quantity <= minThreshold:
		return entity.AlertLevelCritical
	case quantity <= minThreshold:
		return entity.AlertLevelWarning
	default:
		return entity.AlertLevelNormal
	}
}
