package dto

import (
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// AlertDTO una alerta de stock bajo en respuestas HTTP.
type AlertDTO struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	AlertLevel       string     `json:"alert_level"`
	NotificationSent bool       `json:"notification_sent"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AlertToDTO mapea una alerta a su DTO.
func AlertToDTO(a *entity.LowStockAlert) AlertDTO {
	return AlertDTO{
		ID:               a.ID,
		ProductID:        a.ProductID,
		AlertLevel:       a.AlertLevel,
		NotificationSent: a.NotificationSent,
		ResolvedAt:       a.ResolvedAt,
		CreatedAt:        a.CreatedAt,
	}
}
