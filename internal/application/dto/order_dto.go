package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// OrderItemDTO una línea de orden en respuestas HTTP.
type OrderItemDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderDTO una orden con sus líneas.
type OrderDTO struct {
	ID              string         `json:"id"`
	CustomerPhone   string         `json:"customer_phone,omitempty"`
	OrderStatus     string         `json:"order_status"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
	Source          string         `json:"source,omitempty"`
	Items           []OrderItemDTO `json:"items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// OrderToDTO mapea una orden a su DTO.
func OrderToDTO(o *entity.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return OrderDTO{
		ID:              o.ID,
		CustomerPhone:   o.CustomerPhone,
		OrderStatus:     o.OrderStatus,
		DeliveryAddress: o.DeliveryAddress,
		Source:          o.Source,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"` // pending | processing | completed | cancelled
}
