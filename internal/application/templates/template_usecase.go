// Package templates CRUD de plantillas de órdenes de trabajo.
package templates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// TemplateUseCase casos de uso CRUD para plantillas.
type TemplateUseCase struct {
	repo repository.TemplateRepository
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(repo repository.TemplateRepository) *TemplateUseCase {
	return &TemplateUseCase{repo: repo}
}

// Create crea una plantilla. Con sede en el alcance, la plantilla queda en esa sede.
func (uc *TemplateUseCase) Create(ctx context.Context, scope domain.Scope, in dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
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
	now := time.Now()
	tpl := &entity.WorkOrderTemplate{
		ID:                  uuid.New().String(),
		TenantID:            scope.TenantID,
		SiteID:              siteID,
		Name:                in.Name,
		Title:               in.Title,
		Description:         in.Description,
		Priority:            in.Priority,
		RequiredPermitTypes: nonNil(in.RequiredPermitTypes),
		LockoutPoints:       nonNil(in.LockoutPoints),
		Approvers:           nonNil(in.Approvers),
		LaborCost:           in.LaborCost,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

// GetByID obtiene una plantilla dentro del alcance.
func (uc *TemplateUseCase) GetByID(ctx context.Context, scope domain.Scope, id string) (*dto.TemplateResponse, error) {
	tpl, err := uc.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

// Update actualiza los campos presentes.
func (uc *TemplateUseCase) Update(ctx context.Context, scope domain.Scope, id string, in dto.UpdateTemplateRequest) (*dto.TemplateResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tpl, err := uc.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		tpl.Name = *in.Name
	}
	if in.Title != nil {
		tpl.Title = *in.Title
	}
	if in.Description != nil {
		tpl.Description = *in.Description
	}
	if in.Priority != nil {
		tpl.Priority = *in.Priority
	}
	if in.RequiredPermitTypes != nil {
		tpl.RequiredPermitTypes = in.RequiredPermitTypes
	}
	if in.LockoutPoints != nil {
		tpl.LockoutPoints = in.LockoutPoints
	}
	if in.Approvers != nil {
		tpl.Approvers = in.Approvers
	}
	if in.LaborCost != nil {
		tpl.LaborCost = *in.LaborCost
	}
	tpl.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

// List lista plantillas del tenant (y sede del alcance) con paginación.
func (uc *TemplateUseCase) List(ctx context.Context, scope domain.Scope, limit, offset int) (*dto.TemplateListResponse, error) {
	list, err := uc.repo.ListByTenant(ctx, scope.TenantID, scope.SiteID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTemplateResponse(t))
	}
	return &dto.TemplateListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una plantilla. Las órdenes creadas desde ella conservan sus datos.
func (uc *TemplateUseCase) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if _, err := uc.load(ctx, scope, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// load: plantillas sin sede son visibles en todas las sedes del tenant.
func (uc *TemplateUseCase) load(ctx context.Context, scope domain.Scope, id string) (*entity.WorkOrderTemplate, error) {
	tpl, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil || tpl.TenantID != scope.TenantID {
		return nil, domain.ErrNotFound
	}
	if tpl.SiteID != "" && !scope.Allows(tpl.TenantID, tpl.SiteID) {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toTemplateResponse(t *entity.WorkOrderTemplate) *dto.TemplateResponse {
	if t == nil {
		return nil
	}
	return &dto.TemplateResponse{
		ID:                  t.ID,
		TenantID:            t.TenantID,
		SiteID:              t.SiteID,
		Name:                t.Name,
		Title:               t.Title,
		Description:         t.Description,
		Priority:            t.Priority,
		RequiredPermitTypes: nonNil(t.RequiredPermitTypes),
		LockoutPoints:       nonNil(t.LockoutPoints),
		Approvers:           nonNil(t.Approvers),
		LaborCost:           t.LaborCost,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
