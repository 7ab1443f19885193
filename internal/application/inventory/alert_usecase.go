package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/internal/domain/stock"
)

// AlertChannel devuelve el canal de alertas de stock de una empresa.
func AlertChannel(companyID string) string {
	return "stock_alerts:" + companyID
}

// StockAlertEvent payload del evento stock_alert empujado a los suscriptores.
type StockAlertEvent struct {
	ProductID    string    `json:"productId"`
	CurrentStock int       `json:"currentStock"`
	MinStock     int       `json:"minStock"`
	AlertLevel   string    `json:"alertLevel"`
	Timestamp    time.Time `json:"timestamp"`
}

// AlertUseCase evalúa umbrales de stock bajo y administra el ciclo de vida de
// las alertas. Corre después del commit de la mutación de stock: sus fallas se
// registran pero nunca revierten un cambio de stock ya durable.
type AlertUseCase struct {
	alertRepo repository.AlertRepository
	publisher Publisher
}

// NewAlertUseCase construye el evaluador de umbrales.
func NewAlertUseCase(alertRepo repository.AlertRepository, publisher Publisher) *AlertUseCase {
	return &AlertUseCase{alertRepo: alertRepo, publisher: publisher}
}

// Evaluate clasifica la cantidad contra el umbral y, si el nivel no es normal,
// crea una alerta sin resolver, publica el evento stock_alert y marca la
// alerta como notificada. Si ya existe una alerta sin resolver del mismo nivel
// para el producto, no se crea otra (se evita el spam de alertas; un cambio de
// nivel sí produce una alerta nueva).
//
// Decisión de política: las alertas NO se auto-resuelven cuando el stock se
// recupera; la resolución es una operación explícita (Resolve). Así el
// historial de alertas no se oculta silenciosamente.
func (uc *AlertUseCase) Evaluate(ctx context.Context, companyID, productID string, currentQuantity, minThreshold int) (string, error) {
	level := stock.AlertLevel(currentQuantity, minThreshold)
	if level == entity.AlertLevelNormal {
		return level, nil
	}

	unresolved, err := uc.alertRepo.GetUnresolvedByProduct(ctx, companyID, productID)
	if err != nil {
		return level, fmt.Errorf("consultar alertas sin resolver: %w", err)
	}
	for _, a := range unresolved {
		if a.AlertLevel == level {
			return level, nil
		}
	}

	alert := &entity.LowStockAlert{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		ProductID:        productID,
		AlertLevel:       level,
		NotificationSent: false,
		CreatedAt:        time.Now(),
	}
	if err := uc.alertRepo.Create(ctx, alert); err != nil {
		return level, fmt.Errorf("crear alerta de stock: %w", err)
	}

	uc.publisher.Publish(AlertChannel(companyID), StockAlertEvent{
		ProductID:    productID,
		CurrentStock: currentQuantity,
		MinStock:     minThreshold,
		AlertLevel:   level,
		Timestamp:    time.Now(),
	})

	if err := uc.alertRepo.MarkNotified(ctx, alert.ID); err != nil {
		return level, fmt.Errorf("marcar alerta notificada: %w", err)
	}
	return level, nil
}

// Resolve marca una alerta como resuelta (acción explícita del operador).
func (uc *AlertUseCase) Resolve(ctx context.Context, companyID, alertID string) (*entity.LowStockAlert, error) {
	return uc.alertRepo.Resolve(ctx, companyID, alertID)
}

// ListActive devuelve las alertas sin resolver de la empresa.
func (uc *AlertUseCase) ListActive(ctx context.Context, companyID string) ([]*entity.LowStockAlert, error) {
	return uc.alertRepo.ListActive(ctx, companyID)
}
