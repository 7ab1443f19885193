package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintentar la operación completa")
)

// StockShortfall detalla el faltante de un producto en una operación rechazada.
type StockShortfall struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Error       string `json:"error,omitempty"` // ej. "producto no encontrado"
}

// InsufficientStockError rechazo por stock insuficiente con detalle por ítem.
// Siempre significa "ninguna mutación ocurrió": se detecta antes del commit y
// la transacción completa hace rollback.
type InsufficientStockError struct {
	Items []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Items) == 0 {
		return ErrInsufficientStock.Error()
	}
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("producto %s: solicitado %d, disponible %d", it.ProductID, it.Requested, it.Available))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, domain.ErrInsufficientStock) sobre el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStockError construye el error para un solo producto.
func NewInsufficientStockError(productID, productName string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{Items: []StockShortfall{{
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
	}}}
}
