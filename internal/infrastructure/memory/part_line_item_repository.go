package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// PartLineItemRepository líneas de repuestos en memoria.
type PartLineItemRepository struct {
	s    *Store
	inTx bool
}

var _ repository.PartLineItemRepository = (*PartLineItemRepository)(nil)

// Create guarda una línea nueva.
func (r *PartLineItemRepository) Create(_ context.Context, item *entity.WorkOrderPartLineItem) (err error) {
	r.s.view(r.inTx, func() {
		if _, ok := r.s.lineItems[item.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		c := *item
		r.s.lineItems[item.ID] = &c
	})
	return err
}

// Update reemplaza la línea.
func (r *PartLineItemRepository) Update(_ context.Context, item *entity.WorkOrderPartLineItem) (err error) {
	r.s.view(r.inTx, func() {
		if _, ok := r.s.lineItems[item.ID]; !ok {
			err = domain.ErrNotFound
			return
		}
		c := *item
		r.s.lineItems[item.ID] = &c
	})
	return err
}

// GetByID incluye líneas borradas; nil, nil si no existe.
func (r *PartLineItemRepository) GetByID(_ context.Context, id string) (item *entity.WorkOrderPartLineItem, err error) {
	r.s.view(r.inTx, func() {
		if cur, ok := r.s.lineItems[id]; ok {
			c := *cur
			item = &c
		}
	})
	return item, nil
}

// ListActiveByStock líneas activas de la orden para el stock.
func (r *PartLineItemRepository) ListActiveByStock(_ context.Context, workOrderID, stockID string) ([]*entity.WorkOrderPartLineItem, error) {
	var out []*entity.WorkOrderPartLineItem
	for _, it := range r.active(workOrderID) {
		if it.StockID == stockID {
			out = append(out, it)
		}
	}
	return out, nil
}

// ListActiveByWorkOrder líneas no borradas por fecha de creación.
func (r *PartLineItemRepository) ListActiveByWorkOrder(_ context.Context, workOrderID string) ([]*entity.WorkOrderPartLineItem, error) {
	return r.active(workOrderID), nil
}

func (r *PartLineItemRepository) active(workOrderID string) []*entity.WorkOrderPartLineItem {
	var out []*entity.WorkOrderPartLineItem
	r.s.view(r.inTx, func() {
		for _, it := range r.s.lineItems {
			if it.WorkOrderID == workOrderID && it.IsActive() {
				c := *it
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
