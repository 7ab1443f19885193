package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implementación de AdjustmentRepository sobre PostgreSQL (usable con pool o tx).
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador de ajustes administrativos. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create persiste un ajuste administrativo (misma transacción que su movimiento).
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.InventoryAdjustment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_adjustments (id, company_id, product_id, adjustment_type, quantity_change, reason, cost_impact, created_by, movement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if a.CreatedBy != "" {
		createdBy = &a.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.ProductID, a.AdjustmentType, a.QuantityChange,
		a.Reason, a.CostImpact, createdBy, a.MovementID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory adjustment: %w", err)
	}
	return nil
}

// List lista ajustes con filtros opcionales, más reciente primero.
// Los filtros se agregan como parámetros posicionales: nunca se interpola
// texto del caller en el SQL.
func (r *AdjustmentRepo) List(ctx context.Context, companyID string, f repository.AdjustmentFilters) ([]*entity.InventoryAdjustment, error) {
	query := `
		SELECT id, company_id, product_id, adjustment_type, quantity_change, reason, cost_impact, created_by, movement_id, created_at
		FROM inventory_adjustments WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.AdjustmentType != "" {
		query += fmt.Sprintf(" AND adjustment_type = $%d", pos)
		args = append(args, f.AdjustmentType)
		pos++
	}
	if f.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.StartDate)
		pos++
	}
	if f.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.EndDate)
		pos++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryAdjustment
	for rows.Next() {
		var a entity.InventoryAdjustment
		var createdBy *string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.ProductID, &a.AdjustmentType, &a.QuantityChange,
			&a.Reason, &a.CostImpact, &createdBy, &a.MovementID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if createdBy != nil {
			a.CreatedBy = *createdBy
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
