package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/sla"
)

// WorkOrderRepository órdenes en memoria; guarda y devuelve copias.
type WorkOrderRepository struct {
	s    *Store
	inTx bool
}

var _ repository.WorkOrderRepository = (*WorkOrderRepository)(nil)

// Create guarda una orden nueva.
func (r *WorkOrderRepository) Create(_ context.Context, wo *entity.WorkOrder) (err error) {
	r.s.view(r.inTx, func() {
		if _, ok := r.s.workOrders[wo.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		if wo.Version == 0 {
			wo.Version = 1
		}
		r.s.workOrders[wo.ID] = wo.Clone()
	})
	return err
}

// GetByID devuelve nil, nil si no existe.
func (r *WorkOrderRepository) GetByID(_ context.Context, id string) (wo *entity.WorkOrder, err error) {
	r.s.view(r.inTx, func() {
		wo = r.s.workOrders[id].Clone()
	})
	return wo, nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex ya serializa la transacción.
func (r *WorkOrderRepository) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

// Update escritura condicional sobre la versión.
func (r *WorkOrderRepository) Update(_ context.Context, wo *entity.WorkOrder, expectedVersion int) (err error) {
	r.s.view(r.inTx, func() {
		current, ok := r.s.workOrders[wo.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if current.Version != expectedVersion {
			err = domain.ErrVersionConflict
			return
		}
		wo.Version = expectedVersion + 1
		r.s.workOrders[wo.ID] = wo.Clone()
	})
	return err
}

// ListSlaUpcoming órdenes con un vencimiento pendiente dentro de [now, until].
func (r *WorkOrderRepository) ListSlaUpcoming(_ context.Context, now, until time.Time) ([]*entity.WorkOrder, error) {
	within := func(t *time.Time) bool { return t != nil && !t.Before(now) && !t.After(until) }
	return r.filter(func(wo *entity.WorkOrder) bool {
		return (sla.ResponsePending(wo) && within(wo.SlaResponseDueAt)) ||
			(sla.ResolvePending(wo) && within(wo.SlaResolveDueAt))
	}), nil
}

// ListSlaBreached órdenes con algún vencimiento pendiente ya pasado.
func (r *WorkOrderRepository) ListSlaBreached(_ context.Context, now time.Time) ([]*entity.WorkOrder, error) {
	return r.filter(func(wo *entity.WorkOrder) bool {
		return sla.IsBreached(wo, now)
	}), nil
}

func (r *WorkOrderRepository) filter(match func(*entity.WorkOrder) bool) []*entity.WorkOrder {
	var out []*entity.WorkOrder
	r.s.view(r.inTx, func() {
		for _, wo := range r.s.workOrders {
			if wo.Status != entity.StatusCancelled && match(wo) {
				out = append(out, wo.Clone())
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
