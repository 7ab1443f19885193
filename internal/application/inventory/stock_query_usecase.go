package inventory

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/application/cache"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/internal/domain/stock"
)

// StockStatus lectura derivada del estado de stock de un producto. Sin lock:
// es una foto consistente al momento de la consulta, nunca la autoridad para
// crear alertas.
type StockStatus struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"minThreshold"`
	Status       string `json:"status"` // normal, low_stock, out_of_stock
}

// StockQueryUseCase rutas de lectura de stock: estado actual y ledger de
// movimientos. Las respuestas de estado pasan por el cache TTL; el motor de
// ajustes invalida la entrada del producto en cada mutación commiteada.
type StockQueryUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	readCache    *cache.Cache
}

// NewStockQueryUseCase construye el servicio de consultas de stock.
func NewStockQueryUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	readCache *cache.Cache,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		readCache:    readCache,
	}
}

// GetStock devuelve cantidad, umbral y estado derivado de un producto.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, companyID, productID string) (*StockStatus, error) {
	key := cache.StockKey(companyID, productID)
	if cached, ok := uc.readCache.Get(key); ok {
		if st, ok := cached.(*StockStatus); ok {
			return st, nil
		}
	}

	product, err := uc.productRepo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	st := &StockStatus{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     product.StockQuantity,
		MinThreshold: product.MinStockAlert,
		Status:       stock.Status(product.StockQuantity, product.MinStockAlert, product.IsAvailable),
	}
	uc.readCache.Set(key, st)
	return st, nil
}

// ListMovements devuelve el historial del ledger de un producto, más reciente primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movementRepo.ListByProduct(ctx, companyID, productID, limit, offset)
}
