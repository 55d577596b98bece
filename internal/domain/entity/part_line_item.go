package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderPartLineItem une una orden con una reserva de stock.
// Invariante: QtyIssued <= Quantity. El borrado es lógico (DeletedAt).
type WorkOrderPartLineItem struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SiteID      string          `json:"site_id"`
	WorkOrderID string          `json:"work_order_id"`
	StockID     string          `json:"stock_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	QtyIssued   decimal.Decimal `json:"qty_issued"`
	QtyReturned decimal.Decimal `json:"qty_returned"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// OutstandingReserved cantidad reservada aún no despachada.
func (li *WorkOrderPartLineItem) OutstandingReserved() decimal.Decimal {
	return li.Quantity.Sub(li.QtyIssued)
}

// Returnable cantidad despachada que todavía puede devolverse.
func (li *WorkOrderPartLineItem) Returnable() decimal.Decimal {
	return li.QtyIssued.Sub(li.QtyReturned)
}

// IsActive indica si la línea no fue borrada.
func (li *WorkOrderPartLineItem) IsActive() bool {
	return li.DeletedAt == nil
}
