package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// TemplateRepository puerto de plantillas de órdenes.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *entity.WorkOrderTemplate) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrderTemplate, error)
	Update(ctx context.Context, tpl *entity.WorkOrderTemplate) error
	Delete(ctx context.Context, id string) error
	ListByTenant(ctx context.Context, tenantID, siteID string, limit, offset int) ([]*entity.WorkOrderTemplate, error)
}
