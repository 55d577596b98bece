// Package parts implementa el libro de repuestos de la orden: reservar, despachar,
// devolver y borrar líneas, con movimientos inmutables y totales recalculados.
package parts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/ledger"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// Options ajustes del libro.
type Options struct {
	// ReleaseOnReturn: además de reingresar lo devuelto, libera lo reservado sin despachar.
	ReleaseOnReturn bool
}

// LedgerUseCase operaciones del libro de repuestos. Cada una corre en una sola
// transacción y usa decrementos condicionales sobre el stock.
type LedgerUseCase struct {
	txRunner  TxRunner
	woRepo    repository.WorkOrderRepository
	stockRepo repository.PartStockRepository
	lineRepo  repository.PartLineItemRepository
	movRepo   repository.InventoryMovementRepository
	opts      Options
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. Los repositorios sueltos se usan para lecturas fuera de tx.
func NewLedgerUseCase(
	txRunner TxRunner,
	woRepo repository.WorkOrderRepository,
	stockRepo repository.PartStockRepository,
	lineRepo repository.PartLineItemRepository,
	movRepo repository.InventoryMovementRepository,
	opts Options,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		woRepo:    woRepo,
		stockRepo: stockRepo,
		lineRepo:  lineRepo,
		movRepo:   movRepo,
		opts:      opts,
		now:       time.Now,
	}
}

// Reserve aparta stock para la orden y crea o amplía su línea de repuestos.
func (uc *LedgerUseCase) Reserve(ctx context.Context, scope domain.Scope, workOrderID string, in dto.ReserveRequest) (*dto.PartsResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	var out dto.PartsResult

	err := uc.txRunner.Run(ctx, func(
		woRepo repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		lineRepo repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		wo, stock, err := loadScoped(ctx, woRepo, stockRepo, scope, workOrderID, in.StockID)
		if err != nil {
			return err
		}
		if wo.IsTerminal() {
			return fmt.Errorf("%w: la orden está cerrada (%s)", domain.ErrInvalidInput, wo.Status)
		}

		// Decremento condicional: on_hand >= qty o falla sin tocar nada.
		ok, err := stockRepo.Reserve(ctx, stock.ID, in.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientStock
		}

		unitCost := stock.UnitCost
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		}
		lines, err := lineRepo.ListActiveByStock(ctx, wo.ID, stock.ID)
		if err != nil {
			return err
		}
		// Ampliar solo la línea con el mismo costo: lo ya despachado conserva su precio.
		item := lineAt(lines, unitCost)
		if item == nil {
			item = &entity.WorkOrderPartLineItem{
				ID:          uuid.New().String(),
				TenantID:    wo.TenantID,
				SiteID:      wo.SiteID,
				WorkOrderID: wo.ID,
				StockID:     stock.ID,
				Quantity:    in.Quantity,
				QtyIssued:   decimal.Zero,
				QtyReturned: decimal.Zero,
				UnitCost:    unitCost,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := lineRepo.Create(ctx, item); err != nil {
				return err
			}
		} else {
			item.Quantity = item.Quantity.Add(in.Quantity)
			item.UpdatedAt = now
			if err := lineRepo.Update(ctx, item); err != nil {
				return err
			}
		}

		if err := movRepo.Create(ctx, newMovement(wo, item, entity.MovementTypeReserve, in.Quantity, scope.UserID, "", now)); err != nil {
			return err
		}
		label := fmt.Sprintf("Reserved %s of part %s", in.Quantity, stock.PartID)
		if err := uc.finish(ctx, woRepo, lineRepo, wo, label, scope.UserID, now); err != nil {
			return err
		}
		return fill(ctx, stockRepo, &out, wo, item)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Issue despacha repuestos reservados: reserved baja y qty_issued sube.
func (uc *LedgerUseCase) Issue(ctx context.Context, scope domain.Scope, workOrderID string, in dto.PartsQuantityRequest) (*dto.PartsResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	var out dto.PartsResult

	err := uc.txRunner.Run(ctx, func(
		woRepo repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		lineRepo repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		wo, stock, err := loadScoped(ctx, woRepo, stockRepo, scope, workOrderID, in.StockID)
		if err != nil {
			return err
		}
		lines, err := lineRepo.ListActiveByStock(ctx, wo.ID, stock.ID)
		if err != nil {
			return err
		}
		if in.Quantity.GreaterThan(sumOf(lines, (*entity.WorkOrderPartLineItem).OutstandingReserved)) {
			return domain.ErrOverIssue
		}

		ok, err := stockRepo.ConsumeReserved(ctx, stock.ID, in.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientStock
		}

		// Se despacha primero lo reservado más antiguo.
		var item *entity.WorkOrderPartLineItem
		remaining := in.Quantity
		for _, line := range lines {
			take := decimal.Min(remaining, line.OutstandingReserved())
			if !take.IsPositive() {
				continue
			}
			line.QtyIssued = line.QtyIssued.Add(take)
			line.UpdatedAt = now
			if err := lineRepo.Update(ctx, line); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, newMovement(wo, line, entity.MovementTypeIssue, take, scope.UserID, "", now)); err != nil {
				return err
			}
			item = line
			remaining = remaining.Sub(take)
			if remaining.IsZero() {
				break
			}
		}

		label := fmt.Sprintf("Issued %s of part %s", in.Quantity, stock.PartID)
		if err := uc.finish(ctx, woRepo, lineRepo, wo, label, scope.UserID, now); err != nil {
			return err
		}
		return fill(ctx, stockRepo, &out, wo, item)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Return reingresa stock a on_hand. Por defecto solo admite repuestos despachados
// y no usados (qty_returned sube). Con Options.ReleaseOnReturn devuelve primero lo
// reservado sin despachar (reserved baja, la línea se achica) y el resto de lo
// despachado, de modo que on_hand + reserved solo pierde lo consumido.
func (uc *LedgerUseCase) Return(ctx context.Context, scope domain.Scope, workOrderID string, in dto.PartsQuantityRequest) (*dto.PartsResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	var out dto.PartsResult

	err := uc.txRunner.Run(ctx, func(
		woRepo repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		lineRepo repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		wo, stock, err := loadScoped(ctx, woRepo, stockRepo, scope, workOrderID, in.StockID)
		if err != nil {
			return err
		}
		lines, err := lineRepo.ListActiveByStock(ctx, wo.ID, stock.ID)
		if err != nil {
			return err
		}
		limit := sumOf(lines, (*entity.WorkOrderPartLineItem).Returnable)
		if uc.opts.ReleaseOnReturn {
			limit = limit.Add(sumOf(lines, (*entity.WorkOrderPartLineItem).OutstandingReserved))
		}
		if len(lines) == 0 || in.Quantity.GreaterThan(limit) {
			return domain.ErrOverReturn
		}

		touched := make(map[string]bool, len(lines))
		var item *entity.WorkOrderPartLineItem
		remaining := in.Quantity

		if uc.opts.ReleaseOnReturn {
			for i := len(lines) - 1; i >= 0 && remaining.IsPositive(); i-- {
				line := lines[i]
				take := decimal.Min(remaining, line.OutstandingReserved())
				if !take.IsPositive() {
					continue
				}
				if err := releaseReservation(ctx, stockRepo, movRepo, wo, line, take, scope.UserID, "reservation returned", now); err != nil {
					return err
				}
				line.Quantity = line.Quantity.Sub(take)
				touched[line.ID] = true
				item = line
				remaining = remaining.Sub(take)
			}
		}

		if remaining.IsPositive() {
			if err := stockRepo.AddOnHand(ctx, stock.ID, remaining); err != nil {
				return err
			}
			// Se devuelve primero lo último despachado.
			for i := len(lines) - 1; i >= 0 && remaining.IsPositive(); i-- {
				line := lines[i]
				take := decimal.Min(remaining, line.Returnable())
				if !take.IsPositive() {
					continue
				}
				line.QtyReturned = line.QtyReturned.Add(take)
				if err := movRepo.Create(ctx, newMovement(wo, line, entity.MovementTypeReturn, take, scope.UserID, "", now)); err != nil {
					return err
				}
				touched[line.ID] = true
				item = line
				remaining = remaining.Sub(take)
			}
		}

		for _, line := range lines {
			if !touched[line.ID] {
				continue
			}
			line.UpdatedAt = now
			if err := lineRepo.Update(ctx, line); err != nil {
				return err
			}
		}

		label := fmt.Sprintf("Returned %s of part %s", in.Quantity, stock.PartID)
		if err := uc.finish(ctx, woRepo, lineRepo, wo, label, scope.UserID, now); err != nil {
			return err
		}
		return fill(ctx, stockRepo, &out, wo, item)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLineItem borrado lógico: libera lo reservado sin despachar y excluye la
// línea de listados y totales. La línea y sus movimientos se conservan.
func (uc *LedgerUseCase) DeleteLineItem(ctx context.Context, scope domain.Scope, workOrderID, lineItemID string) error {
	now := uc.now()
	return uc.txRunner.Run(ctx, func(
		woRepo repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		lineRepo repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		wo, err := loadWorkOrder(ctx, woRepo, scope, workOrderID)
		if err != nil {
			return err
		}
		item, err := lineRepo.GetByID(ctx, lineItemID)
		if err != nil {
			return err
		}
		if item == nil || !item.IsActive() {
			return domain.ErrNotFound
		}
		if item.TenantID != wo.TenantID || item.WorkOrderID != wo.ID {
			return domain.ErrScopeViolation
		}

		if outstanding := item.OutstandingReserved(); outstanding.IsPositive() {
			if err := releaseReservation(ctx, stockRepo, movRepo, wo, item, outstanding, scope.UserID, "line item deleted", now); err != nil {
				return err
			}
		}
		deletedAt := now
		item.DeletedAt = &deletedAt
		item.UpdatedAt = now
		if err := lineRepo.Update(ctx, item); err != nil {
			return err
		}
		return uc.finish(ctx, woRepo, lineRepo, wo, "Parts line item removed", scope.UserID, now)
	})
}

// ListLineItems líneas activas de la orden.
func (uc *LedgerUseCase) ListLineItems(ctx context.Context, scope domain.Scope, workOrderID string) (*dto.LineItemListResponse, error) {
	if _, err := loadWorkOrder(ctx, uc.woRepo, scope, workOrderID); err != nil {
		return nil, err
	}
	items, err := uc.lineRepo.ListActiveByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.WorkOrderPartLineItem{}
	}
	return &dto.LineItemListResponse{Items: items}, nil
}

// ListMovements movimientos de la orden (incluye los de líneas borradas).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, scope domain.Scope, workOrderID string, limit, offset int) (*dto.MovementListResponse, error) {
	if _, err := loadWorkOrder(ctx, uc.woRepo, scope, workOrderID); err != nil {
		return nil, err
	}
	list, err := uc.movRepo.ListByWorkOrder(ctx, workOrderID, limit, offset)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.InventoryMovement{}
	}
	return &dto.MovementListResponse{Items: list, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// CreateStock da de alta existencias de un repuesto en una sede del tenant.
func (uc *LedgerUseCase) CreateStock(ctx context.Context, scope domain.Scope, in dto.CreateStockRequest) (*entity.PartStock, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	siteID := in.SiteID
	if scope.SiteID != "" {
		if siteID != "" && siteID != scope.SiteID {
			return nil, domain.ErrScopeViolation
		}
		siteID = scope.SiteID
	}
	if siteID == "" {
		return nil, fmt.Errorf("%w: site_id es obligatorio", domain.ErrInvalidInput)
	}
	now := uc.now()
	stock := &entity.PartStock{
		ID:        uuid.New().String(),
		TenantID:  scope.TenantID,
		SiteID:    siteID,
		PartID:    in.PartID,
		OnHand:    in.OnHand,
		Reserved:  decimal.Zero,
		UnitCost:  in.UnitCost,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.stockRepo.Create(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// GetStock existencias por ID dentro del alcance.
func (uc *LedgerUseCase) GetStock(ctx context.Context, scope domain.Scope, id string) (*entity.PartStock, error) {
	stock, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Allows(stock.TenantID, stock.SiteID) {
		return nil, domain.ErrScopeViolation
	}
	return stock, nil
}

// finish recalcula totales desde las líneas activas, agrega la entrada "parts" y
// persiste la orden con escritura condicional.
func (uc *LedgerUseCase) finish(
	ctx context.Context,
	woRepo repository.WorkOrderRepository,
	lineRepo repository.PartLineItemRepository,
	wo *entity.WorkOrder,
	label, actor string,
	now time.Time,
) error {
	items, err := lineRepo.ListActiveByWorkOrder(ctx, wo.ID)
	if err != nil {
		return err
	}
	ledger.RecomputeTotals(wo, items)
	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     label,
		Type:      entity.TimelineParts,
		CreatedAt: now,
		CreatedBy: actor,
	})
	return woRepo.Update(ctx, wo, wo.Version)
}

func releaseReservation(
	ctx context.Context,
	stockRepo repository.PartStockRepository,
	movRepo repository.InventoryMovementRepository,
	wo *entity.WorkOrder,
	item *entity.WorkOrderPartLineItem,
	qty decimal.Decimal,
	actor, reference string,
	now time.Time,
) error {
	ok, err := stockRepo.ReleaseReserved(ctx, item.StockID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientStock
	}
	return movRepo.Create(ctx, newMovement(wo, item, entity.MovementTypeReturn, qty, actor, reference, now))
}

// lineAt línea con ese costo unitario; nil si no hay.
func lineAt(lines []*entity.WorkOrderPartLineItem, unitCost decimal.Decimal) *entity.WorkOrderPartLineItem {
	for _, line := range lines {
		if line.UnitCost.Equal(unitCost) {
			return line
		}
	}
	return nil
}

func sumOf(lines []*entity.WorkOrderPartLineItem, qty func(*entity.WorkOrderPartLineItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(qty(line))
	}
	return total
}

// loadWorkOrder bloquea la orden; fuera del tenant es violación de alcance.
func loadWorkOrder(ctx context.Context, woRepo repository.WorkOrderRepository, scope domain.Scope, id string) (*entity.WorkOrder, error) {
	wo, err := woRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Allows(wo.TenantID, wo.SiteID) {
		return nil, domain.ErrScopeViolation
	}
	return wo, nil
}

func loadScoped(
	ctx context.Context,
	woRepo repository.WorkOrderRepository,
	stockRepo repository.PartStockRepository,
	scope domain.Scope,
	workOrderID, stockID string,
) (*entity.WorkOrder, *entity.PartStock, error) {
	wo, err := loadWorkOrder(ctx, woRepo, scope, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	stock, err := stockRepo.GetByID(ctx, stockID)
	if err != nil {
		return nil, nil, err
	}
	if stock == nil {
		return nil, nil, domain.ErrNotFound
	}
	if stock.TenantID != wo.TenantID || stock.SiteID != wo.SiteID {
		return nil, nil, domain.ErrScopeViolation
	}
	return wo, stock, nil
}

func newMovement(wo *entity.WorkOrder, item *entity.WorkOrderPartLineItem, typ string, qty decimal.Decimal, actor, reference string, now time.Time) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:          uuid.New().String(),
		TenantID:    wo.TenantID,
		SiteID:      wo.SiteID,
		WorkOrderID: wo.ID,
		StockID:     item.StockID,
		LineItemID:  item.ID,
		Type:        typ,
		Quantity:    qty,
		UnitCost:    item.UnitCost,
		Reference:   reference,
		CreatedAt:   now,
		CreatedBy:   actor,
	}
}

func fill(ctx context.Context, stockRepo repository.PartStockRepository, out *dto.PartsResult, wo *entity.WorkOrder, item *entity.WorkOrderPartLineItem) error {
	stock, err := stockRepo.GetByID(ctx, item.StockID)
	if err != nil {
		return err
	}
	out.WorkOrder = wo
	out.LineItem = item
	out.Stock = stock
	return nil
}
