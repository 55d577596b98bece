package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/parts"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// PartsHandler expone el libro de repuestos de cada orden y las existencias.
type PartsHandler struct {
	uc *parts.LedgerUseCase
}

// NewPartsHandler construye el handler.
func NewPartsHandler(uc *parts.LedgerUseCase) *PartsHandler {
	return &PartsHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar repuestos para la orden
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la orden"
// @Param        body  body  dto.ReserveRequest  true  "Stock y cantidad"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts/reserve [post]
func (h *PartsHandler) Reserve(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReserveRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Reserve(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Issue godoc
// @Summary      Despachar repuestos reservados
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la orden"
// @Param        body  body  dto.PartsQuantityRequest  true  "Stock y cantidad"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts/issue [post]
func (h *PartsHandler) Issue(c *fiber.Ctx) error {
	return h.quantity(c, h.uc.Issue)
}

// Return godoc
// @Summary      Devolver repuestos despachados
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la orden"
// @Param        body  body  dto.PartsQuantityRequest  true  "Stock y cantidad"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts/return [post]
func (h *PartsHandler) Return(c *fiber.Ctx) error {
	return h.quantity(c, h.uc.Return)
}

func (h *PartsHandler) quantity(
	c *fiber.Ctx,
	op func(context.Context, domain.Scope, string, dto.PartsQuantityRequest) (*dto.PartsResult, error),
) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.PartsQuantityRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := op(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// DeleteLineItem godoc
// @Summary      Quitar línea de repuestos
// @Description  Libera la reserva pendiente y marca la línea como borrada.
// @Tags         parts
// @Security     Bearer
// @Param        id          path  string  true  "ID de la orden"
// @Param        lineItemId  path  string  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts/{lineItemId} [delete]
func (h *PartsHandler) DeleteLineItem(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	lineItemID, err := pathID(c, "lineItemId")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteLineItem(c.UserContext(), GetScope(c), id, lineItemID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLineItems godoc
// @Summary      Líneas de repuestos activas de la orden
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts [get]
func (h *PartsHandler) ListLineItems(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListLineItems(c.UserContext(), GetScope(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// ListMovements godoc
// @Summary      Movimientos de repuestos de la orden
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la orden"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.Envelope
// @Router       /api/work-orders/{id}/parts/movements [get]
func (h *PartsHandler) ListMovements(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	p := page(c)
	out, err := h.uc.ListMovements(c.UserContext(), GetScope(c), id, p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// CreateStock godoc
// @Summary      Dar de alta existencias de un repuesto
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "Repuesto, cantidad y costo"
// @Success      201   {object}  dto.Envelope
// @Router       /api/parts/stock [post]
func (h *PartsHandler) CreateStock(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateStock(c.UserContext(), GetScope(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusCreated, out)
}

// GetStock godoc
// @Summary      Consultar existencias
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del stock"
// @Success      200  {object}  dto.Envelope
// @Router       /api/parts/stock/{id} [get]
func (h *PartsHandler) GetStock(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetStock(c.UserContext(), GetScope(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}
