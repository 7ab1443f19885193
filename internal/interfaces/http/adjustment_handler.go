package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// AdjustmentHandler maneja los ajustes administrativos de inventario (protegido).
type AdjustmentHandler struct {
	engine *inventory.AdjustmentUseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(engine *inventory.AdjustmentUseCase) *AdjustmentHandler {
	return &AdjustmentHandler{engine: engine}
}

// Create godoc
// @Summary      Registrar ajuste administrativo de inventario
// @Description  Aplica un delta con signo al stock y deja registro administrativo ligado 1:1 al movimiento del ledger.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "product_id, adjustment_type (restock|damage|loss|correction), quantity_change, reason"
// @Success      201   {object}  dto.StockUpdatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" || in.AdjustmentType == "" || in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id, adjustment_type y reason son requeridos"})
	}

	result, err := h.engine.ApplyAdjustment(c.Context(), inventory.AdjustmentInput{
		CompanyID:      companyID,
		ProductID:      in.ProductID,
		Delta:          in.QuantityChange,
		Reason:         in.Reason,
		UserID:         userID,
		AdjustmentType: in.AdjustmentType,
		CostImpact:     in.CostImpact,
	})
	if err != nil {
		return mapStockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockUpdatedResponse{
		ProductID:  result.ProductID,
		NewStock:   result.NewQuantity,
		MovementID: result.MovementID,
		AlertLevel: result.AlertLevel,
	})
}

// List godoc
// @Summary      Listar ajustes administrativos
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        product_id       query  string  false  "Filtrar por producto"
// @Param        adjustment_type  query  string  false  "Filtrar por tipo"
// @Param        start_date       query  string  false  "Desde (RFC3339)"
// @Param        end_date         query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.AdjustmentDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	filters := repository.AdjustmentFilters{
		ProductID:      c.Query("product_id"),
		AdjustmentType: c.Query("adjustment_type"),
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start_date inválida (RFC3339)"})
		}
		filters.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end_date inválida (RFC3339)"})
		}
		filters.EndDate = &t
	}

	list, err := h.engine.ListAdjustments(c.Context(), companyID, filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.AdjustmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AdjustmentToDTO(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "adjustments": out})
}
