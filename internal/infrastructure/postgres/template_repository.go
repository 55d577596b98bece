package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.TemplateRepository = (*TemplateRepo)(nil)

// TemplateRepo plantillas de órdenes sobre PostgreSQL; las listas van en columnas text[].
type TemplateRepo struct {
	q Querier
}

// NewTemplateRepository construye el adaptador de persistencia para plantillas.
func NewTemplateRepository(q Querier) *TemplateRepo {
	return &TemplateRepo{q: q}
}

const templateColumns = `id, tenant_id, site_id, name, title, description, priority,
	required_permit_types, lockout_points, approvers, labor_cost, created_at, updated_at`

// Create persiste una nueva plantilla.
func (r *TemplateRepo) Create(ctx context.Context, t *entity.WorkOrderTemplate) error {
	query := `INSERT INTO work_order_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.SiteID, t.Name, t.Title, t.Description, t.Priority,
		textArray(t.RequiredPermitTypes), textArray(t.LockoutPoints), textArray(t.Approvers),
		t.LaborCost, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return wrapInsert("insert template", err)
	}
	return nil
}

// GetByID obtiene una plantilla por ID; nil, nil si no existe.
func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrderTemplate, error) {
	t, err := scanTemplate(r.q.QueryRow(ctx, `SELECT `+templateColumns+` FROM work_order_templates WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// Update actualiza una plantilla existente.
func (r *TemplateRepo) Update(ctx context.Context, t *entity.WorkOrderTemplate) error {
	query := `
		UPDATE work_order_templates SET name = $2, title = $3, description = $4, priority = $5,
			required_permit_types = $6, lockout_points = $7, approvers = $8, labor_cost = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.Title, t.Description, t.Priority,
		textArray(t.RequiredPermitTypes), textArray(t.LockoutPoints), textArray(t.Approvers),
		t.LaborCost, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una plantilla por ID.
func (r *TemplateRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM work_order_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTenant lista plantillas del tenant; con siteID incluye las de todo el tenant (sede vacía).
func (r *TemplateRepo) ListByTenant(ctx context.Context, tenantID, siteID string, limit, offset int) ([]*entity.WorkOrderTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM work_order_templates
		WHERE tenant_id = $1 AND ($2::text = '' OR site_id = '' OR site_id = $2)
		ORDER BY name, id LIMIT NULLIF($3::int, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, siteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	list := []*entity.WorkOrderTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTemplate(row rowScanner) (*entity.WorkOrderTemplate, error) {
	var t entity.WorkOrderTemplate
	err := row.Scan(
		&t.ID, &t.TenantID, &t.SiteID, &t.Name, &t.Title, &t.Description, &t.Priority,
		&t.RequiredPermitTypes, &t.LockoutPoints, &t.Approvers, &t.LaborCost, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// textArray evita NULL en columnas text[] NOT NULL.
func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
