package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de repuestos.
const (
	MovementTypeReserve = "reserve"
	MovementTypeIssue   = "issue"
	MovementTypeReturn  = "return"
)

// InventoryMovement registro inmutable de cada operación del libro (nunca se actualiza ni borra).
type InventoryMovement struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SiteID      string          `json:"site_id"`
	WorkOrderID string          `json:"work_order_id"`
	StockID     string          `json:"stock_id"`
	LineItemID  string          `json:"line_item_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"` // siempre positiva; el sentido lo da Type
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}
