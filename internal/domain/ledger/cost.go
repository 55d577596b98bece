// Package ledger reúne los cálculos de costo del libro de repuestos de la orden.
package ledger

import (
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ConsumedCost costo de lo efectivamente consumido por un ítem: UnitCost * (emitido - devuelto).
func ConsumedCost(item *entity.WorkOrderPartLineItem) decimal.Decimal {
	if !item.IsActive() {
		return decimal.Zero
	}
	net := item.QtyIssued.Sub(item.QtyReturned)
	if net.IsNegative() {
		return decimal.Zero
	}
	return item.UnitCost.Mul(net)
}

// RecomputeTotals recalcula los totales de costo de la orden a partir de sus ítems activos.
func RecomputeTotals(wo *entity.WorkOrder, items []*entity.WorkOrderPartLineItem) {
	parts := decimal.Zero
	for _, it := range items {
		parts = parts.Add(ConsumedCost(it))
	}
	wo.PartsCostTotal = parts
	wo.PartsCost = parts
	RefreshTotal(wo)
}

// RefreshTotal recalcula solo TotalCost cuando cambian mano de obra u otros costos.
func RefreshTotal(wo *entity.WorkOrder) {
	wo.TotalCost = wo.PartsCost.Add(wo.LaborCost).Add(wo.OtherCost)
}
