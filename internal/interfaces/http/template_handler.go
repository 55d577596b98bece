package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/templates"
)

// TemplateHandler maneja las peticiones HTTP para plantillas de órdenes (protegido).
type TemplateHandler struct {
	uc *templates.TemplateUseCase
}

// NewTemplateHandler construye el handler.
func NewTemplateHandler(uc *templates.TemplateUseCase) *TemplateHandler {
	return &TemplateHandler{uc: uc}
}

// Create godoc
// @Summary      Crear plantilla
// @Tags         templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTemplateRequest  true  "Datos de la plantilla"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Router       /api/work-orders/templates [post]
func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTemplateRequest
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
// @Summary      Obtener plantilla por ID
// @Tags         templates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/work-orders/templates/{id} [get]
func (h *TemplateHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar plantillas
// @Tags         templates
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.Envelope
// @Router       /api/work-orders/templates [get]
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), GetScope(c), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Actualizar plantilla
// @Tags         templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la plantilla"
// @Param        body  body  dto.UpdateTemplateRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope
// @Router       /api/work-orders/templates/{id} [put]
func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateTemplateRequest
	if err := decodeBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetScope(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Eliminar plantilla
// @Tags         templates
// @Security     Bearer
// @Param        id  path  string  true  "ID de la plantilla"
// @Success      204
// @Router       /api/work-orders/templates/{id} [delete]
func (h *TemplateHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetScope(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
