package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/orders"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// IntegrationHandler expone el canal de integración externo (API key):
// webhook de órdenes, lectura de stock y sincronización masiva.
type IntegrationHandler struct {
	fulfillment *orders.FulfillmentUseCase
	bulkSync    *inventory.BulkSyncUseCase
	queries     *inventory.StockQueryUseCase
}

// NewIntegrationHandler construye el handler.
func NewIntegrationHandler(
	fulfillment *orders.FulfillmentUseCase,
	bulkSync *inventory.BulkSyncUseCase,
	queries *inventory.StockQueryUseCase,
) *IntegrationHandler {
	return &IntegrationHandler{fulfillment: fulfillment, bulkSync: bulkSync, queries: queries}
}

// WebhookOrder godoc
// @Summary      Recibir orden del canal externo
// @Description  Debita atómicamente el stock de todos los ítems y crea la orden; con faltantes responde 409 con el detalle por ítem sin tocar stock.
// @Tags         integration
// @Accept       json
// @Produce      json
// @Param        X-API-Key     header  string                   true  "API key del canal"
// @Param        X-Company-ID  header  string                   true  "Tenant destino"
// @Param        body          body    dto.WebhookOrderRequest  true  "customer_phone, source, items"
// @Success      201  {object}  dto.WebhookOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/integration/webhook/order [post]
func (h *IntegrationHandler) WebhookOrder(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var in dto.WebhookOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]orders.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, orders.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	result, err := h.fulfillment.FulfillOrder(c.Context(), orders.FulfillOrderInput{
		CompanyID:       companyID,
		CustomerPhone:   in.CustomerPhone,
		Items:           items,
		DeliveryAddress: in.DeliveryAddress,
		Source:          in.Source,
	})
	if err != nil {
		return mapStockError(c, err)
	}

	out := dto.WebhookOrderResponse{OrderID: result.OrderID, Status: entity.OrderStatusPending}
	for _, it := range result.Items {
		out.Items = append(out.Items, dto.FulfilledItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			NewStock:  it.NewStock,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Stock actual de un producto (canal externo)
// @Description  Lectura cacheada con TTL; el motor de ajustes invalida la entrada en cada mutación.
// @Tags         integration
// @Produce      json
// @Param        X-API-Key     header  string  true  "API key del canal"
// @Param        X-Company-ID  header  string  true  "Tenant destino"
// @Param        productId     path    string  true  "ID del producto"
// @Success      200  {object}  dto.StockStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/integration/stock/{productId} [get]
func (h *IntegrationHandler) GetStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	st, err := h.queries.GetStock(c.Context(), companyID, c.Params("productId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.StockStatusResponse{
		ProductID:    st.ProductID,
		ProductName:  st.ProductName,
		Quantity:     st.Quantity,
		MinThreshold: st.MinThreshold,
		Status:       st.Status,
	})
}

// SyncInventory godoc
// @Summary      Sincronización masiva de inventario
// @Description  Cada ítem es un ajuste independiente: los fallos no abortan el resto del lote.
// @Tags         integration
// @Accept       json
// @Produce      json
// @Param        X-API-Key     header  string                     true  "API key del canal"
// @Param        X-Company-ID  header  string                     true  "Tenant destino"
// @Param        body          body    dto.SyncInventoryRequest   true  "items: product_id, quantity, operation (add|subtract|set)"
// @Success      200  {object}  dto.SyncInventoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/integration/sync/inventory [post]
func (h *IntegrationHandler) SyncInventory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var in dto.SyncInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items requerido"})
	}

	items := make([]inventory.SyncItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.SyncItem{ProductID: it.ProductID, Quantity: it.Quantity, Operation: it.Operation})
	}
	results := h.bulkSync.SyncInventory(c.Context(), companyID, "", items)

	out := dto.SyncInventoryResponse{Processed: len(results)}
	for _, r := range results {
		out.Results = append(out.Results, dto.SyncItemResultDTO{
			ProductID: r.ProductID,
			Success:   r.Success,
			NewStock:  r.NewStock,
			Error:     r.Error,
		})
		if r.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return c.JSON(out)
}
