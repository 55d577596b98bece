package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// TemplateRepository plantillas en memoria.
type TemplateRepository struct {
	s *Store
}

var _ repository.TemplateRepository = (*TemplateRepository)(nil)

func cloneTemplate(t *entity.WorkOrderTemplate) *entity.WorkOrderTemplate {
	c := *t
	c.RequiredPermitTypes = slices.Clone(t.RequiredPermitTypes)
	c.LockoutPoints = slices.Clone(t.LockoutPoints)
	c.Approvers = slices.Clone(t.Approvers)
	return &c
}

// Create guarda una plantilla.
func (r *TemplateRepository) Create(_ context.Context, tpl *entity.WorkOrderTemplate) (err error) {
	r.s.view(false, func() {
		if _, ok := r.s.templates[tpl.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		r.s.templates[tpl.ID] = cloneTemplate(tpl)
	})
	return err
}

// GetByID nil, nil si no existe.
func (r *TemplateRepository) GetByID(_ context.Context, id string) (tpl *entity.WorkOrderTemplate, err error) {
	r.s.view(false, func() {
		if cur, ok := r.s.templates[id]; ok {
			tpl = cloneTemplate(cur)
		}
	})
	return tpl, nil
}

// Update reemplaza la plantilla.
func (r *TemplateRepository) Update(_ context.Context, tpl *entity.WorkOrderTemplate) (err error) {
	r.s.view(false, func() {
		if _, ok := r.s.templates[tpl.ID]; !ok {
			err = domain.ErrNotFound
			return
		}
		r.s.templates[tpl.ID] = cloneTemplate(tpl)
	})
	return err
}

// Delete elimina la plantilla.
func (r *TemplateRepository) Delete(_ context.Context, id string) (err error) {
	r.s.view(false, func() {
		if _, ok := r.s.templates[id]; !ok {
			err = domain.ErrNotFound
			return
		}
		delete(r.s.templates, id)
	})
	return err
}

// ListByTenant plantillas del tenant; con siteID incluye también las de todo el tenant (sede vacía).
func (r *TemplateRepository) ListByTenant(_ context.Context, tenantID, siteID string, limit, offset int) ([]*entity.WorkOrderTemplate, error) {
	var all []*entity.WorkOrderTemplate
	r.s.view(false, func() {
		for _, t := range r.s.templates {
			if t.TenantID != tenantID {
				continue
			}
			if siteID != "" && t.SiteID != "" && t.SiteID != siteID {
				continue
			}
			all = append(all, cloneTemplate(t))
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []*entity.WorkOrderTemplate{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
