package dto

import (
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// SetStockRequest body para PATCH /api/products/:id/stock.
// El puntero distingue "no enviado" de cero: cero es un valor válido.
type SetStockRequest struct {
	StockQuantity *int   `json:"stock_quantity"`
	Reason        string `json:"reason,omitempty"`
}

// StockUpdatedResponse resultado de fijar el stock de un producto.
type StockUpdatedResponse struct {
	ProductID  string `json:"product_id"`
	NewStock   int    `json:"new_stock"`
	MovementID string `json:"movement_id,omitempty"`
	AlertLevel string `json:"alert_level"`
}

// MovementDTO una entrada del ledger en respuestas HTTP.
type MovementDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	MovementType   string    `json:"movement_type"`
	QuantityChange int       `json:"quantity_change"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementToDTO mapea una entrada del ledger a su DTO.
func MovementToDTO(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:             m.ID,
		ProductID:      m.ProductID,
		MovementType:   m.Type,
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		UserID:         m.UserID,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedAt:      m.CreatedAt,
	}
}

// StockStatusResponse stock actual y estado derivado de un producto.
type StockStatusResponse struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
	Status       string `json:"status"`
}
