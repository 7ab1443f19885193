package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del ledger de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste una entrada del ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, movement_type, quantity_change, quantity_before, quantity_after, reason, user_id, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	userID := (*string)(nil)
	if m.UserID != "" {
		userID = &m.UserID
	}
	referenceID := (*string)(nil)
	if m.ReferenceID != "" {
		referenceID = &m.ReferenceID
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.Type, m.QuantityChange,
		m.QuantityBefore, m.QuantityAfter, m.Reason, userID, m.ReferenceType,
		referenceID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista el historial del ledger de un producto, más reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, company_id, product_id, movement_type, quantity_change, quantity_before, quantity_after, reason, user_id, reference_type, reference_id, created_at
		FROM stock_movements
		WHERE company_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var userID, referenceID *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.QuantityChange,
			&m.QuantityBefore, &m.QuantityAfter, &m.Reason, &userID, &m.ReferenceType,
			&referenceID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if userID != nil {
			m.UserID = *userID
		}
		if referenceID != nil {
			m.ReferenceID = *referenceID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
