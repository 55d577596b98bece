package memory

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// InventoryMovementRepository libro de movimientos en memoria (solo agrega).
type InventoryMovementRepository struct {
	s    *Store
	inTx bool
}

var _ repository.InventoryMovementRepository = (*InventoryMovementRepository)(nil)

// Create agrega un movimiento.
func (r *InventoryMovementRepository) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.view(r.inTx, func() {
		c := *m
		r.s.movements = append(r.s.movements, &c)
	})
	return nil
}

// ListByWorkOrder movimientos de la orden en orden de inserción.
func (r *InventoryMovementRepository) ListByWorkOrder(_ context.Context, workOrderID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	r.s.view(r.inTx, func() {
		skipped := 0
		for _, m := range r.s.movements {
			if m.WorkOrderID != workOrderID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			c := *m
			out = append(out, &c)
		}
	})
	return out, nil
}
