package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// translateConcurrency traduce fallas de lock/serialización de PostgreSQL al
// error de dominio de conflicto de concurrencia, para que el caller reintente
// la operación completa (pre-chequeo + fase atómica) en vez de quedar
// bloqueado o ver el error crudo del driver.
//
//	55P03 lock_not_available  (lock_timeout excedido)
//	40001 serialization_failure
//	40P01 deadlock_detected
func translateConcurrency(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40001", "40P01":
			return fmt.Errorf("%w: %s", domain.ErrConcurrencyConflict, pgErr.Code)
		}
	}
	return err
}
