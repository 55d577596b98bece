package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

// WorkOrderRepo guarda la orden como documento JSONB; las columnas sueltas
// existen para filtrar e indexar (alcance, estado y vencimientos SLA).
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

// Create persiste una orden nueva.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *entity.WorkOrder) error {
	if wo.Version == 0 {
		wo.Version = 1
	}
	doc, err := json.Marshal(wo)
	if err != nil {
		return fmt.Errorf("marshal work order: %w", err)
	}
	query := `
		INSERT INTO work_orders (id, tenant_id, site_id, status, priority, assigned_to, version,
			sla_response_due_at, sla_resolve_due_at, sla_responded_at, sla_resolved_at,
			doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		wo.ID, wo.TenantID, wo.SiteID, wo.Status, wo.Priority, wo.AssignedTo, wo.Version,
		wo.SlaResponseDueAt, wo.SlaResolveDueAt, wo.SlaRespondedAt, wo.SlaResolvedAt,
		doc, wo.CreatedAt, wo.UpdatedAt,
	)
	if err != nil {
		return wrapInsert("insert work order", err)
	}
	return nil
}

// GetByID obtiene una orden; nil, nil si no existe.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.get(ctx, `SELECT doc FROM work_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.get(ctx, `SELECT doc FROM work_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *WorkOrderRepo) get(ctx context.Context, query, id string) (*entity.WorkOrder, error) {
	var doc []byte
	if err := r.q.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return decodeWorkOrder(doc)
}

// Update escribe el documento solo si la versión almacenada es expectedVersion.
func (r *WorkOrderRepo) Update(ctx context.Context, wo *entity.WorkOrder, expectedVersion int) error {
	next := *wo
	next.Version = expectedVersion + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal work order: %w", err)
	}
	query := `
		UPDATE work_orders SET status = $3, priority = $4, assigned_to = $5, version = $6,
			sla_response_due_at = $7, sla_resolve_due_at = $8, sla_responded_at = $9, sla_resolved_at = $10,
			doc = $11, updated_at = $12
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		wo.ID, expectedVersion, wo.Status, wo.Priority, wo.AssignedTo, next.Version,
		wo.SlaResponseDueAt, wo.SlaResolveDueAt, wo.SlaRespondedAt, wo.SlaResolvedAt,
		doc, wo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM work_orders WHERE id = $1)`, wo.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check work order: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	wo.Version = next.Version
	return nil
}

// ListSlaUpcoming órdenes no canceladas con vencimiento pendiente en [now, until].
func (r *WorkOrderRepo) ListSlaUpcoming(ctx context.Context, now, until time.Time) ([]*entity.WorkOrder, error) {
	query := `
		SELECT doc FROM work_orders
		WHERE status <> 'cancelled' AND (
			(sla_responded_at IS NULL AND sla_response_due_at BETWEEN $1 AND $2)
			OR (sla_resolved_at IS NULL AND status <> 'completed' AND sla_resolve_due_at BETWEEN $1 AND $2)
		)
		ORDER BY created_at, id`
	return r.list(ctx, query, now, until)
}

// ListSlaBreached órdenes no canceladas con algún vencimiento pendiente ya pasado.
func (r *WorkOrderRepo) ListSlaBreached(ctx context.Context, now time.Time) ([]*entity.WorkOrder, error) {
	query := `
		SELECT doc FROM work_orders
		WHERE status <> 'cancelled' AND (
			(sla_responded_at IS NULL AND sla_response_due_at <= $1)
			OR (sla_resolved_at IS NULL AND status <> 'completed' AND sla_resolve_due_at <= $1)
		)
		ORDER BY created_at, id`
	return r.list(ctx, query, now)
}

func (r *WorkOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.WorkOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrder
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		wo, err := decodeWorkOrder(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}

func decodeWorkOrder(doc []byte) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	if err := json.Unmarshal(doc, &wo); err != nil {
		return nil, fmt.Errorf("decode work order: %w", err)
	}
	return &wo, nil
}
