package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// errorMapping código HTTP y código de error por sentinel del dominio.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrScopeViolation, fiber.StatusBadRequest, "SCOPE_VIOLATION"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK"},
	{domain.ErrOverIssue, fiber.StatusBadRequest, "OVER_ISSUE"},
	{domain.ErrOverReturn, fiber.StatusBadRequest, "OVER_RETURN"},
	{domain.ErrPermitsRequired, fiber.StatusConflict, "PERMITS_REQUIRED"},
	{domain.ErrLotoIncomplete, fiber.StatusConflict, "LOTO_INCOMPLETE"},
	{domain.ErrApprovalPending, fiber.StatusConflict, "APPROVAL_PENDING"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrNoPendingApproval, fiber.StatusConflict, "NO_PENDING_APPROVAL"},
	{domain.ErrVersionConflict, fiber.StatusConflict, "VERSION_CONFLICT"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// blockedBody datos extra de una compuerta de seguridad bloqueada.
type blockedBody struct {
	Reason  string   `json:"reason"`
	Missing []string `json:"missing,omitempty"`
}

// writeError traduce el error del caso de uso a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		body := dto.ErrorResponse(m.code, err.Error())
		var blocked *domain.BlockedError
		if errors.As(err, &blocked) {
			body.Data = blockedBody{Reason: blocked.Reason, Missing: blocked.Missing}
		}
		return c.Status(m.status).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL", "error interno"))
}

func writeOK(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.OK(data))
}

// decodeBody JSON estricto: campos desconocidos o basura al final son error de validación.
func decodeBody(c *fiber.Ctx, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrInvalidInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: cuerpo inválido: contenido extra", domain.ErrInvalidInput)
	}
	return nil
}

// pathID lee un parámetro de ruta que debe ser UUID.
func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s no es un UUID válido", domain.ErrInvalidInput, name)
	}
	return id.String(), nil
}

// page lee limit/offset de la query con los límites de dto.PageRequest.
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
