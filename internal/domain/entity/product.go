package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// StockQuantity se muta exclusivamente a través del motor de ajustes o del
// coordinador de órdenes; nunca por asignación directa en otra capa.
// Invariante: en todo punto commiteado, StockQuantity es igual a la cantidad
// inicial más la suma firmada de todos los movimientos del ledger del producto.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal // precio de venta
	StockQuantity int             // cantidad actual (>= 0 en operación normal)
	MinStockAlert int             // umbral mínimo configurado (>= 0)
	IsAvailable   bool            // soft-delete
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
