package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera de una orden. Se invoca en la misma transacción
// que los débitos de stock y los ítems.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, company_id, customer_phone, order_status, delivery_address, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.CompanyID, order.CustomerPhone, order.OrderStatus,
		order.DeliveryAddress, order.Source, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la orden con el precio snapshot.
func (r *OrderRepo) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

// GetByID obtiene una orden con sus ítems. Devuelve nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Order, error) {
	query := `
		SELECT id, company_id, customer_phone, order_status, delivery_address, source, created_at, updated_at
		FROM orders WHERE company_id = $1 AND id = $2`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&o.ID, &o.CompanyID, &o.CustomerPhone, &o.OrderStatus,
		&o.DeliveryAddress, &o.Source, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items WHERE order_id = $1`
	rows, err := r.q.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus cambia el estado de una orden y la devuelve. nil si no existe.
func (r *OrderRepo) UpdateStatus(ctx context.Context, companyID, id, status string) (*entity.Order, error) {
	query := `
		UPDATE orders SET order_status = $1, updated_at = now()
		WHERE company_id = $2 AND id = $3
		RETURNING id, company_id, customer_phone, order_status, delivery_address, source, created_at, updated_at`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, status, companyID, id).Scan(
		&o.ID, &o.CompanyID, &o.CustomerPhone, &o.OrderStatus,
		&o.DeliveryAddress, &o.Source, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &o, nil
}
