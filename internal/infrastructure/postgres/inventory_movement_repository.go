package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento del libro de repuestos.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, tenant_id, site_id, work_order_id, stock_id, line_item_id,
			type, quantity, unit_cost, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.SiteID, m.WorkOrderID, m.StockID, m.LineItemID,
		m.Type, m.Quantity, m.UnitCost, m.Reference, m.CreatedAt, createdBy,
	)
	if err != nil {
		return wrapInsert("create inventory movement", err)
	}
	return nil
}

// ListByWorkOrder movimientos de la orden en orden cronológico.
func (r *InventoryMovementRepo) ListByWorkOrder(ctx context.Context, workOrderID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, tenant_id, site_id, work_order_id, stock_id, line_item_id, type, quantity, unit_cost,
			reference, created_at, COALESCE(created_by, '')
		FROM inventory_movements WHERE work_order_id = $1
		ORDER BY created_at, seq LIMIT NULLIF($2::int, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, workOrderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.SiteID, &m.WorkOrderID, &m.StockID, &m.LineItemID, &m.Type, &m.Quantity, &m.UnitCost,
			&m.Reference, &m.CreatedAt, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
