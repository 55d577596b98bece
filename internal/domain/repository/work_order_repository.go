package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// WorkOrderRepository puerto de persistencia del agregado WorkOrder.
// Update es una escritura condicional: solo aplica si la versión almacenada
// coincide con expectedVersion; si no, devuelve domain.ErrVersionConflict.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	// GetByID no filtra por tenant; el caller valida el alcance. Devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	// GetForUpdate igual que GetByID pero bloquea el documento dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error)
	Update(ctx context.Context, wo *entity.WorkOrder, expectedVersion int) error

	// ListSlaUpcoming órdenes con vencimiento de respuesta o resolución en [now, until].
	ListSlaUpcoming(ctx context.Context, now, until time.Time) ([]*entity.WorkOrder, error)
	// ListSlaBreached órdenes con respuesta o resolución vencidas y sin atender.
	ListSlaBreached(ctx context.Context, now time.Time) ([]*entity.WorkOrder, error)
}
