package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE): serializa a
// los mutadores concurrentes del mismo producto sin bloquear a los de otros.
type ProductRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, companyID, id string, quantity int) error
	ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Product, error)
}
