package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ReserveRequest body para POST /api/work-orders/:id/parts/reserve.
type ReserveRequest struct {
	StockID  string           `json:"stock_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// Validate cantidad positiva y costo no negativo.
func (r ReserveRequest) Validate() error {
	if err := validateQty(r.StockID, r.Quantity); err != nil {
		return err
	}
	if r.UnitCost != nil && r.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// PartsQuantityRequest body para issue y return.
type PartsQuantityRequest struct {
	StockID  string          `json:"stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Validate cantidad positiva.
func (r PartsQuantityRequest) Validate() error {
	return validateQty(r.StockID, r.Quantity)
}

func validateQty(stockID string, qty decimal.Decimal) error {
	if stockID == "" {
		return fmt.Errorf("%w: stock_id es obligatorio", domain.ErrInvalidInput)
	}
	if !qty.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
	}
	return nil
}

// CreateStockRequest body para POST /api/parts/stock.
type CreateStockRequest struct {
	SiteID   string          `json:"site_id,omitempty"`
	PartID   string          `json:"part_id"`
	OnHand   decimal.Decimal `json:"on_hand"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Validate cantidades no negativas.
func (r CreateStockRequest) Validate() error {
	if r.PartID == "" {
		return fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
	}
	if r.OnHand.IsNegative() || r.UnitCost.IsNegative() {
		return fmt.Errorf("%w: on_hand y unit_cost no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// PartsResult resultado de una operación del libro: ítem, stock y orden actualizados.
type PartsResult struct {
	LineItem  *entity.WorkOrderPartLineItem `json:"line_item"`
	Stock     *entity.PartStock             `json:"stock"`
	WorkOrder *entity.WorkOrder             `json:"work_order"`
}

// LineItemListResponse ítems activos de una orden.
type LineItemListResponse struct {
	Items []*entity.WorkOrderPartLineItem `json:"items"`
}

// MovementListResponse movimientos paginados de una orden.
type MovementListResponse struct {
	Items []*entity.InventoryMovement `json:"items"`
	Page  PageResponse                `json:"page"`
}
