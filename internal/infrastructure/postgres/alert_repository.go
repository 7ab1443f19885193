package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación de AlertRepository sobre PostgreSQL (usable con pool o tx).
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de alertas. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

const alertColumns = `id, company_id, product_id, alert_level, notification_sent, resolved_at, created_at`

// Create persiste una alerta de stock bajo (sin resolver, sin notificar).
func (r *AlertRepo) Create(ctx context.Context, alert *entity.LowStockAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	query := `
		INSERT INTO low_stock_alerts (id, company_id, product_id, alert_level, notification_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		alert.ID, alert.CompanyID, alert.ProductID, alert.AlertLevel,
		alert.NotificationSent, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// MarkNotified marca la alerta como notificada tras despachar el evento.
func (r *AlertRepo) MarkNotified(ctx context.Context, alertID string) error {
	query := `UPDATE low_stock_alerts SET notification_sent = true WHERE id = $1`
	_, err := r.q.Exec(ctx, query, alertID)
	if err != nil {
		return fmt.Errorf("mark alert notified: %w", err)
	}
	return nil
}

// Resolve marca la alerta como resuelta y la devuelve. ErrNotFound si no existe.
func (r *AlertRepo) Resolve(ctx context.Context, companyID, alertID string) (*entity.LowStockAlert, error) {
	query := `
		UPDATE low_stock_alerts SET resolved_at = now()
		WHERE company_id = $1 AND id = $2
		RETURNING ` + alertColumns
	var a entity.LowStockAlert
	err := r.q.QueryRow(ctx, query, companyID, alertID).Scan(
		&a.ID, &a.CompanyID, &a.ProductID, &a.AlertLevel,
		&a.NotificationSent, &a.ResolvedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve alert: %w", err)
	}
	return &a, nil
}

// GetUnresolvedByProduct devuelve las alertas sin resolver de un producto.
func (r *AlertRepo) GetUnresolvedByProduct(ctx context.Context, companyID, productID string) ([]*entity.LowStockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM low_stock_alerts
		WHERE company_id = $1 AND product_id = $2 AND resolved_at IS NULL
		ORDER BY created_at DESC`
	return r.list(ctx, query, companyID, productID)
}

// ListActive devuelve las alertas sin resolver de la empresa, más reciente primero.
func (r *AlertRepo) ListActive(ctx context.Context, companyID string) ([]*entity.LowStockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM low_stock_alerts
		WHERE company_id = $1 AND resolved_at IS NULL
		ORDER BY created_at DESC`
	return r.list(ctx, query, companyID)
}

func (r *AlertRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LowStockAlert, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var list []*entity.LowStockAlert
	for rows.Next() {
		var a entity.LowStockAlert
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.ProductID, &a.AlertLevel,
			&a.NotificationSent, &a.ResolvedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
