package entity

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de trabajo.
const (
	StatusRequested       = "requested"
	StatusAssigned        = "assigned"
	StatusInProgress      = "in_progress"
	StatusOnHold          = "on_hold"
	StatusPendingApproval = "pending_approval"
	StatusCompleted       = "completed"
	StatusCancelled       = "cancelled"
)

// Prioridades.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Estados de aprobación (pasos y orden completa).
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Tipos de entrada en la línea de tiempo.
const (
	TimelineCreated  = "created"
	TimelineStatus   = "status"
	TimelineApproval = "approval"
	TimelineSLA      = "sla"
	TimelineParts    = "parts"
	TimelineSafety   = "safety"
	TimelineSync     = "sync"
)

// Disparadores de escalamiento SLA.
const (
	SlaTriggerResponse = "response"
	SlaTriggerResolve  = "resolve"
)

// ApprovalStep es un paso de la cadena de aprobación (ordenado por Step).
type ApprovalStep struct {
	Step       int        `json:"step"`
	Status     string     `json:"status"`
	Approver   string     `json:"approver,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// SlaEscalation regla de escalamiento; EscalatedAt evita que dispare dos veces.
type SlaEscalation struct {
	Trigger          string     `json:"trigger" yaml:"trigger"`
	ThresholdMinutes int        `json:"threshold_minutes" yaml:"threshold_minutes"`
	EscalateTo       []string   `json:"escalate_to" yaml:"escalate_to"`
	Priority         string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Reassign         string     `json:"reassign,omitempty" yaml:"reassign,omitempty"`
	EscalatedAt      *time.Time `json:"escalated_at,omitempty" yaml:"-"`
}

// PermitApproval estado de un permiso de trabajo (ej. trabajo en caliente, alturas).
type PermitApproval struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// LockoutTagout punto de aislamiento que debe verificarse antes de trabajar.
type LockoutTagout struct {
	Point      string     `json:"point"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	VerifiedBy string     `json:"verified_by,omitempty"`
}

// TimelineEntry entrada de auditoría; solo se agregan, nunca se modifican.
type TimelineEntry struct {
	Label     string    `json:"label"`
	Notes     string    `json:"notes,omitempty"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// WorkOrder agregado principal, aislado por tenant y sede.
// Version se incrementa en cada escritura (actualización condicional).
type WorkOrder struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	SiteID      string `json:"site_id"`
	TemplateID  string `json:"template_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to,omitempty"`

	ApprovalSteps       []ApprovalStep `json:"approval_steps"`
	CurrentApprovalStep int            `json:"current_approval_step"`
	ApprovalStatus      string         `json:"approval_status"`

	SlaResponseDueAt *time.Time      `json:"sla_response_due_at,omitempty"`
	SlaResolveDueAt  *time.Time      `json:"sla_resolve_due_at,omitempty"`
	SlaRespondedAt   *time.Time      `json:"sla_responded_at,omitempty"`
	SlaResolvedAt    *time.Time      `json:"sla_resolved_at,omitempty"`
	SlaBreachAt      *time.Time      `json:"sla_breach_at,omitempty"`
	SlaEscalations   []SlaEscalation `json:"sla_escalations"`

	RequiredPermitTypes []string         `json:"required_permit_types"`
	PermitApprovals     []PermitApproval `json:"permit_approvals"`
	LockoutTagout       []LockoutTagout  `json:"lockout_tagout"`

	Timeline []TimelineEntry `json:"timeline"`

	PartsCostTotal decimal.Decimal `json:"parts_cost_total"`
	PartsCost      decimal.Decimal `json:"parts_cost"`
	LaborCost      decimal.Decimal `json:"labor_cost"`
	OtherCost      decimal.Decimal `json:"other_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppendTimeline agrega una entrada conservando el orden por CreatedAt:
// si el reloj retrocede se usa la marca de la última entrada.
func (w *WorkOrder) AppendTimeline(entry TimelineEntry) {
	if n := len(w.Timeline); n > 0 && entry.CreatedAt.Before(w.Timeline[n-1].CreatedAt) {
		entry.CreatedAt = w.Timeline[n-1].CreatedAt
	}
	w.Timeline = append(w.Timeline, entry)
}

// CurrentStep devuelve el paso apuntado por CurrentApprovalStep (o nil).
func (w *WorkOrder) CurrentStep() *ApprovalStep {
	for i := range w.ApprovalSteps {
		if w.ApprovalSteps[i].Step == w.CurrentApprovalStep {
			return &w.ApprovalSteps[i]
		}
	}
	return nil
}

// IsTerminal indica si la orden ya no admite cambios de estado.
func (w *WorkOrder) IsTerminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusCancelled
}

// Clone copia profunda; los repositorios en memoria y el monitor la usan para no compartir slices.
func (w *WorkOrder) Clone() *WorkOrder {
	if w == nil {
		return nil
	}
	c := *w
	c.ApprovalSteps = slices.Clone(w.ApprovalSteps)
	c.SlaEscalations = slices.Clone(w.SlaEscalations)
	for i := range c.SlaEscalations {
		c.SlaEscalations[i].EscalateTo = slices.Clone(c.SlaEscalations[i].EscalateTo)
	}
	c.RequiredPermitTypes = slices.Clone(w.RequiredPermitTypes)
	c.PermitApprovals = slices.Clone(w.PermitApprovals)
	c.LockoutTagout = slices.Clone(w.LockoutTagout)
	c.Timeline = slices.Clone(w.Timeline)
	return &c
}

// IsValidStatus valida un estado conocido.
func IsValidStatus(s string) bool {
	switch s {
	case StatusRequested, StatusAssigned, StatusInProgress, StatusOnHold,
		StatusPendingApproval, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsValidPriority valida una prioridad conocida.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
