package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/workorder"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// WorkOrderHandler maneja el ciclo de vida de las órdenes de trabajo (protegido).
type WorkOrderHandler struct {
	uc *workorder.LifecycleUseCase
}

// NewWorkOrderHandler construye el handler.
func NewWorkOrderHandler(uc *workorder.LifecycleUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de trabajo
// @Description  Opcionalmente desde plantilla. Aplica la política SLA de la prioridad.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkOrderRequest  true  "Datos de la orden"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Router       /api/work-orders [post]
func (h *WorkOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkOrderRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener orden de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), GetScope(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Timeline godoc
// @Summary      Línea de tiempo de la orden
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.Envelope
// @Router       /api/work-orders/{id}/timeline [get]
func (h *WorkOrderHandler) Timeline(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Timeline(c.UserContext(), GetScope(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado
// @Description  Pasa por la compuerta de seguridad (permisos, LOTO, aprobación) antes de la tabla de transiciones.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.UpdateStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/status [patch]
func (h *WorkOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateStatusRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Approval godoc
// @Summary      Aprobar o rechazar el paso vigente
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la orden"
// @Param        body  body  dto.ApprovalRequest  true  "Decisión"
// @Success      200   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/approval [post]
func (h *WorkOrderHandler) Approval(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ApprovalRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AdvanceApproval(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// SlaAck godoc
// @Summary      Registrar respuesta o resolución SLA
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.SlaAckRequest  true  "response | resolve"
// @Success      200   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/sla-ack [post]
func (h *WorkOrderHandler) SlaAck(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SlaAckRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AcknowledgeSla(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// RecordPermit godoc
// @Summary      Registrar permiso de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.PermitRequest  true  "Tipo y estado"
// @Success      200   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/permits [post]
func (h *WorkOrderHandler) RecordPermit(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.PermitRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordPermit(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// VerifyLoto godoc
// @Summary      Verificar punto de bloqueo/etiquetado
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID de la orden"
// @Param        index  path  int     true  "Posición del punto LOTO"
// @Success      200    {object}  dto.Envelope
// @Router       /api/work-orders/{id}/loto/{index}/verify [post]
func (h *WorkOrderHandler) VerifyLoto(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return writeError(c, fmt.Errorf("%w: index debe ser un entero", domain.ErrInvalidInput))
	}
	out, err := h.uc.VerifyLoto(c.UserContext(), GetScope(c), id, index)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Sync godoc
// @Summary      Sincronizar edición hecha sin conexión
// @Description  Sin conflictos persiste (200). Con conflictos responde 409 con merged, conflicts y applyChange=false.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la orden"
// @Param        body  body  dto.SyncRequest  true  "Cambios del cliente"
// @Success      200   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/work-orders/{id}/sync [post]
func (h *WorkOrderHandler) Sync(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SyncRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Sync(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	if !out.ApplyChange {
		return c.Status(fiber.StatusConflict).JSON(dto.Envelope{
			Success: false,
			Code:    "SYNC_CONFLICT",
			Message: "la orden cambió en el servidor; revise los conflictos",
			Data:    out,
		})
	}
	return writeOK(c, fiber.StatusOK, out)
}
