package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.PartLineItemRepository = (*PartLineItemRepo)(nil)

// PartLineItemRepo líneas de repuestos sobre PostgreSQL.
type PartLineItemRepo struct {
	q Querier
}

// NewPartLineItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartLineItemRepository(q Querier) *PartLineItemRepo {
	return &PartLineItemRepo{q: q}
}

const lineItemColumns = `id, tenant_id, site_id, work_order_id, stock_id, quantity, qty_issued, qty_returned,
	unit_cost, created_at, updated_at, deleted_at`

// Create persiste una línea nueva.
func (r *PartLineItemRepo) Create(ctx context.Context, it *entity.WorkOrderPartLineItem) error {
	query := `INSERT INTO work_order_part_line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TenantID, it.SiteID, it.WorkOrderID, it.StockID, it.Quantity, it.QtyIssued, it.QtyReturned,
		it.UnitCost, it.CreatedAt, it.UpdatedAt, it.DeletedAt,
	)
	if err != nil {
		return wrapInsert("insert part line item", err)
	}
	return nil
}

// Update reemplaza cantidades, costo y borrado lógico.
func (r *PartLineItemRepo) Update(ctx context.Context, it *entity.WorkOrderPartLineItem) error {
	query := `
		UPDATE work_order_part_line_items
		SET quantity = $2, qty_issued = $3, qty_returned = $4, unit_cost = $5, updated_at = $6, deleted_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, it.ID, it.Quantity, it.QtyIssued, it.QtyReturned, it.UnitCost, it.UpdatedAt, it.DeletedAt)
	if err != nil {
		return fmt.Errorf("update part line item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID incluye líneas borradas; nil, nil si no existe.
func (r *PartLineItemRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrderPartLineItem, error) {
	return r.one(ctx, `SELECT `+lineItemColumns+` FROM work_order_part_line_items WHERE id = $1`, id)
}

// ListActiveByStock líneas activas de la orden para el stock.
func (r *PartLineItemRepo) ListActiveByStock(ctx context.Context, workOrderID, stockID string) ([]*entity.WorkOrderPartLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM work_order_part_line_items
		WHERE work_order_id = $1 AND stock_id = $2 AND deleted_at IS NULL
		ORDER BY created_at, id FOR UPDATE`
	return r.list(ctx, query, workOrderID, stockID)
}

// ListActiveByWorkOrder líneas no borradas por fecha de creación.
func (r *PartLineItemRepo) ListActiveByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderPartLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM work_order_part_line_items
		WHERE work_order_id = $1 AND deleted_at IS NULL ORDER BY created_at, id`
	return r.list(ctx, query, workOrderID)
}

func (r *PartLineItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.WorkOrderPartLineItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list part line items: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrderPartLineItem
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part line item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *PartLineItemRepo) one(ctx context.Context, query string, args ...any) (*entity.WorkOrderPartLineItem, error) {
	it, err := scanLineItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part line item: %w", err)
	}
	return it, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLineItem(row rowScanner) (*entity.WorkOrderPartLineItem, error) {
	var it entity.WorkOrderPartLineItem
	err := row.Scan(
		&it.ID, &it.TenantID, &it.SiteID, &it.WorkOrderID, &it.StockID, &it.Quantity, &it.QtyIssued, &it.QtyReturned,
		&it.UnitCost, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
