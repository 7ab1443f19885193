package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus verifica que el estado sea uno de los permitidos.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order orden multi-ítem recibida del canal externo de pedidos.
// Se crea atómicamente junto con los débitos de stock de todos sus ítems.
type Order struct {
	ID              string
	CompanyID       string
	CustomerPhone   string
	OrderStatus     string
	DeliveryAddress string
	Source          string // identificador del canal externo, ej. "whatsapp"
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem línea de una orden. UnitPrice es una foto del precio del producto
// al momento del fulfillment; no se relee después, para preservar exactitud histórica.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}
