package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes (DIP).
// CreateItem se invoca dentro de la misma transacción que Create y los débitos
// de stock: una orden nunca se persiste parcialmente.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, companyID, id, status string) (*entity.Order, error)
}
