package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el ledger de
// movimientos (DIP). El ledger es append-only: solo Create y lecturas.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
