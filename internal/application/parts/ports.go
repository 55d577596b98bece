package parts

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Cada operación del libro de repuestos es todo-o-nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		woRepo repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		lineRepo repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
