package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartStock existencias de un repuesto en una sede.
// OnHand es la cantidad disponible (ya excluye lo reservado).
type PartStock struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	SiteID    string          `json:"site_id"`
	PartID    string          `json:"part_id"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Reserved  decimal.Decimal `json:"reserved"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
