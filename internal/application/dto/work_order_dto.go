package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreateWorkOrderRequest body para POST /api/work-orders.
// Con TemplateID los campos vacíos se toman de la plantilla.
type CreateWorkOrderRequest struct {
	TemplateID          string           `json:"template_id,omitempty"`
	SiteID              string           `json:"site_id,omitempty"`
	Title               string           `json:"title"`
	Description         string           `json:"description,omitempty"`
	Priority            string           `json:"priority,omitempty"`
	AssignedTo          string           `json:"assigned_to,omitempty"`
	Approvers           []string         `json:"approvers,omitempty"`
	RequiredPermitTypes []string         `json:"required_permit_types,omitempty"`
	LockoutPoints       []string         `json:"lockout_points,omitempty"`
	LaborCost           *decimal.Decimal `json:"labor_cost,omitempty"`
	OtherCost           *decimal.Decimal `json:"other_cost,omitempty"`
}

// Validate revisa formato; el título puede venir de la plantilla.
func (r CreateWorkOrderRequest) Validate() error {
	if r.TemplateID == "" && r.Title == "" {
		return fmt.Errorf("%w: title es obligatorio", domain.ErrInvalidInput)
	}
	if r.Priority != "" && !entity.IsValidPriority(r.Priority) {
		return fmt.Errorf("%w: priority desconocida %q", domain.ErrInvalidInput, r.Priority)
	}
	if (r.LaborCost != nil && r.LaborCost.IsNegative()) || (r.OtherCost != nil && r.OtherCost.IsNegative()) {
		return fmt.Errorf("%w: los costos no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// UpdateStatusRequest body para PATCH /api/work-orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Validate exige un estado conocido.
func (r UpdateStatusRequest) Validate() error {
	if !entity.IsValidStatus(r.Status) {
		return fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, r.Status)
	}
	return nil
}

// ApprovalRequest body para POST /api/work-orders/:id/approval.
type ApprovalRequest struct {
	Approved *bool  `json:"approved"`
	Note     string `json:"note,omitempty"`
}

// Validate exige approved explícito.
func (r ApprovalRequest) Validate() error {
	if r.Approved == nil {
		return fmt.Errorf("%w: approved es obligatorio", domain.ErrInvalidInput)
	}
	return nil
}

// SlaAckRequest body para POST /api/work-orders/:id/sla-ack.
type SlaAckRequest struct {
	Kind string     `json:"kind"`
	At   *time.Time `json:"at,omitempty"`
}

// Validate exige kind response|resolve.
func (r SlaAckRequest) Validate() error {
	if r.Kind != entity.SlaTriggerResponse && r.Kind != entity.SlaTriggerResolve {
		return fmt.Errorf("%w: kind debe ser response o resolve", domain.ErrInvalidInput)
	}
	return nil
}

// PermitRequest body para POST /api/work-orders/:id/permits.
type PermitRequest struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Validate exige tipo y un estado conocido.
func (r PermitRequest) Validate() error {
	if r.Type == "" {
		return fmt.Errorf("%w: type es obligatorio", domain.ErrInvalidInput)
	}
	switch r.Status {
	case entity.ApprovalPending, entity.ApprovalApproved, entity.ApprovalRejected:
		return nil
	}
	return fmt.Errorf("%w: status de permiso desconocido %q", domain.ErrInvalidInput, r.Status)
}

// SyncRequest body para POST /api/work-orders/:id/sync (edición hecha sin conexión).
// Con Version se compara por versión; si no, por ClientUpdatedAt.
type SyncRequest struct {
	Version         *int                   `json:"version,omitempty"`
	ClientUpdatedAt *time.Time             `json:"client_updated_at,omitempty"`
	Payload         map[string]interface{} `json:"payload"`
}

// Validate exige una señal de obsolescencia y un payload no vacío.
func (r SyncRequest) Validate() error {
	if r.Version == nil && r.ClientUpdatedAt == nil {
		return fmt.Errorf("%w: se requiere version o client_updated_at", domain.ErrInvalidInput)
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: payload vacío", domain.ErrInvalidInput)
	}
	return nil
}

// SyncResponse resultado de la sincronización.
type SyncResponse struct {
	Merged      map[string]interface{} `json:"merged"`
	Conflicts   []string               `json:"conflicts"`
	ApplyChange bool                   `json:"applyChange"`
	WorkOrder   *entity.WorkOrder      `json:"work_order,omitempty"`
}

// TimelineResponse línea de tiempo de una orden.
type TimelineResponse struct {
	WorkOrderID string                 `json:"work_order_id"`
	Items       []entity.TimelineEntry `json:"items"`
}
