package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderTemplate plantilla de intake para crear órdenes recurrentes.
type WorkOrderTemplate struct {
	ID                  string          `json:"id"`
	TenantID            string          `json:"tenant_id"`
	SiteID              string          `json:"site_id"`
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
