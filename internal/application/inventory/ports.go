package inventory

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de ajustes:
// la cantidad del producto y su entrada del ledger se escriben juntas o no se
// escribe ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		adjustmentRepo repository.AdjustmentRepository,
	) error) error
}

// Publisher puerto de fan-out en tiempo real (best-effort, fuera de la
// frontera transaccional). Publish nunca bloquea al caller.
type Publisher interface {
	Publish(channel string, event any)
}
