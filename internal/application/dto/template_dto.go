package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreateTemplateRequest entrada para crear una plantilla de orden.
type CreateTemplateRequest struct {
	SiteID              string          `json:"site_id,omitempty"`
	Name                string          `json:"name"`
	Title               string          `json:"title"`
	Description         string          `json:"description,omitempty"`
	Priority            string          `json:"priority"`
	RequiredPermitTypes []string        `json:"required_permit_types,omitempty"`
	LockoutPoints       []string        `json:"lockout_points,omitempty"`
	Approvers           []string        `json:"approvers,omitempty"`
	LaborCost           decimal.Decimal `json:"labor_cost"`
}

// Validate campos obligatorios.
func (r CreateTemplateRequest) Validate() error {
	if r.Name == "" || r.Title == "" {
		return fmt.Errorf("%w: name y title son obligatorios", domain.ErrInvalidInput)
	}
	if !entity.IsValidPriority(r.Priority) {
		return fmt.Errorf("%w: priority desconocida %q", domain.ErrInvalidInput, r.Priority)
	}
	if r.LaborCost.IsNegative() {
		return fmt.Errorf("%w: labor_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// UpdateTemplateRequest entrada para actualizar una plantilla (campos opcionales).
type UpdateTemplateRequest struct {
	Name                *string          `json:"name,omitempty"`
	Title               *string          `json:"title,omitempty"`
	Description         *string          `json:"description,omitempty"`
	Priority            *string          `json:"priority,omitempty"`
	RequiredPermitTypes []string         `json:"required_permit_types,omitempty"`
	LockoutPoints       []string         `json:"lockout_points,omitempty"`
	Approvers           []string         `json:"approvers,omitempty"`
	LaborCost           *decimal.Decimal `json:"labor_cost,omitempty"`
}

// Validate revisa los campos presentes.
func (r UpdateTemplateRequest) Validate() error {
	if (r.Name != nil && *r.Name == "") || (r.Title != nil && *r.Title == "") {
		return fmt.Errorf("%w: name y title no pueden quedar vacíos", domain.ErrInvalidInput)
	}
	if r.Priority != nil && !entity.IsValidPriority(*r.Priority) {
		return fmt.Errorf("%w: priority desconocida %q", domain.ErrInvalidInput, *r.Priority)
	}
	if r.LaborCost != nil && r.LaborCost.IsNegative() {
		return fmt.Errorf("%w: labor_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// TemplateResponse salida de una plantilla.
type TemplateResponse struct {
	ID                  string          `json:"id"`
	TenantID            string          `json:"tenant_id"`
	SiteID              string          `json:"site_id,omitempty"`
	Name                string          `json:"name"`
	Title               string          `json:"title"`
	Description         string          `json:"description,omitempty"`
	Priority            string          `json:"priority"`
	RequiredPermitTypes []string        `json:"required_permit_types"`
	LockoutPoints       []string        `json:"lockout_points"`
	Approvers           []string        `json:"approvers"`
	LaborCost           decimal.Decimal `json:"labor_cost"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TemplateListResponse lista paginada de plantillas.
type TemplateListResponse struct {
	Items []TemplateResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
