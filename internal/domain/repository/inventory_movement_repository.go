package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// InventoryMovementRepository puerto del libro de movimientos (solo inserción y lectura).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByWorkOrder(ctx context.Context, workOrderID string, limit, offset int) ([]*entity.InventoryMovement, error)
}
