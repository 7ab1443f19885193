package entity

import "time"

// Niveles de alerta de stock bajo.
const (
	AlertLevelNormal     = "normal"
	AlertLevelWarning    = "warning"
	AlertLevelCritical   = "critical"
	AlertLevelOutOfStock = "out_of_stock"
)

// LowStockAlert alerta de stock bajo para un producto.
// Ciclo de vida: creada sin resolver → NotificationSent pasa a true una vez
// despachada → ResolvedAt se fija cuando el operador la resuelve explícitamente.
type LowStockAlert struct {
	ID               string
	CompanyID        string
	ProductID        string
	AlertLevel       string // warning, critical, out_of_stock
	NotificationSent bool
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}
