package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/infrastructure/realtime"
	"github.com/tu-usuario/stock-ledger/pkg/jwt"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// WebSocketHandler empuja los eventos stock_alert y stock_updates de la
// empresa del token a los clientes conectados.
type WebSocketHandler struct {
	hub *realtime.Hub
	log *logger.Logger
}

// NewWebSocketHandler construye el handler.
func NewWebSocketHandler(hub *realtime.Hub, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// Upgrade autentica por query token (los clientes WS del navegador no pueden
// mandar headers) y valida que la petición sea un upgrade de WebSocket.
func (h *WebSocketHandler) Upgrade(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(dto.ErrorResponse{Code: "UPGRADE_REQUIRED", Message: "se requiere upgrade a WebSocket"})
		}
		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "query param token requerido"})
		}
		_, companyID, _, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalCompanyID, companyID)
		return c.Next()
	}
}

// Stream es la conexión WebSocket en sí: suscribe al cliente a los canales de
// su empresa y reenvía cada evento como JSON. La desuscripción cierra el canal
// del hub y termina el loop de escritura.
func (h *WebSocketHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		companyID, _ := conn.Locals(LocalCompanyID).(string)
		if companyID == "" {
			_ = conn.Close()
			return
		}

		events := h.hub.Subscribe(
			inventory.AlertChannel(companyID),
			inventory.StockChannel(companyID),
		)
		defer h.hub.Unsubscribe(events)

		// Lector en background: detecta el cierre del cliente.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(evt); err != nil {
					h.log.Debug().Err(err).Str("company_id", companyID).Msg("cliente ws desconectado")
					return
				}
			case <-done:
				return
			}
		}
	})
}
