package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// PartLineItemRepository puerto de líneas de repuestos por orden.
type PartLineItemRepository interface {
	Create(ctx context.Context, item *entity.WorkOrderPartLineItem) error
	Update(ctx context.Context, item *entity.WorkOrderPartLineItem) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrderPartLineItem, error)
	// ListActiveByStock líneas activas de la orden para un stock, por fecha de creación.
	// Hay a lo sumo una por costo unitario.
	ListActiveByStock(ctx context.Context, workOrderID, stockID string) ([]*entity.WorkOrderPartLineItem, error)
	// ListActiveByWorkOrder excluye líneas con borrado lógico.
	ListActiveByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.WorkOrderPartLineItem, error)
}
