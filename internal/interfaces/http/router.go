package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/orders"
	"github.com/tu-usuario/stock-ledger/internal/infrastructure/realtime"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustmentUC      *inventory.AdjustmentUseCase
	QueryUC           *inventory.StockQueryUseCase
	AlertUC           *inventory.AlertUseCase
	BulkSyncUC        *inventory.BulkSyncUseCase
	FulfillUC         *orders.FulfillmentUseCase
	Hub               *realtime.Hub
	Log               *logger.Logger
	JWTSecret         string
	IntegrationAPIKey string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock de productos (protegido)
	stockHandler := NewStockHandler(deps.AdjustmentUC, deps.QueryUC)
	products := protected.Group("/products")
	products.Patch("/:id/stock", RequireRole("admin", "editor"), stockHandler.SetStock)
	products.Get("/:id/movements", stockHandler.ListMovements)

	// Ajustes administrativos (protegido)
	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", RequireRole("admin", "editor"), adjustmentHandler.Create)
	invGroup.Get("/adjustments", adjustmentHandler.List)

	// Alertas de stock bajo (protegido)
	alertHandler := NewAlertHandler(deps.AlertUC)
	alerts := protected.Group("/alerts")
	alerts.Get("/", alertHandler.List)
	alerts.Post("/:id/resolve", RequireRole("admin", "editor"), alertHandler.Resolve)

	// Órdenes (protegido)
	orderHandler := NewOrderHandler(deps.FulfillUC)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Patch("/:id/status", RequireRole("admin", "editor"), orderHandler.UpdateStatus)

	// Canal de integración externo (API key, sin JWT)
	integrationHandler := NewIntegrationHandler(deps.FulfillUC, deps.BulkSyncUC, deps.QueryUC)
	integration := api.Group("/integration", APIKeyMiddleware(deps.IntegrationAPIKey))
	integration.Post("/webhook/order", integrationHandler.WebhookOrder)
	integration.Get("/stock/:productId", integrationHandler.GetStock)
	integration.Post("/sync/inventory", integrationHandler.SyncInventory)

	// Stream de alertas en tiempo real
	wsHandler := NewWebSocketHandler(deps.Hub, deps.Log)
	app.Get("/ws/stock-alerts", wsHandler.Upgrade(deps.JWTSecret), wsHandler.Stream())
}
