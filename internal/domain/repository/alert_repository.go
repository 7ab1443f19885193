package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// AlertRepository define el puerto de persistencia para alertas de stock bajo (DIP).
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.LowStockAlert) error
	MarkNotified(ctx context.Context, alertID string) error
	Resolve(ctx context.Context, companyID, alertID string) (*entity.LowStockAlert, error)
	GetUnresolvedByProduct(ctx context.Context, companyID, productID string) ([]*entity.LowStockAlert, error)
	ListActive(ctx context.Context, companyID string) ([]*entity.LowStockAlert, error)
}
