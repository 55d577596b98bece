package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PartStockRepository puerto de existencias. Las mutaciones son actualizaciones
// atómicas condicionales (nunca leer-modificar-escribir); devuelven false
// cuando la condición no se cumple o el registro no existe.
type PartStockRepository interface {
	Create(ctx context.Context, stock *entity.PartStock) error
	GetByID(ctx context.Context, id string) (*entity.PartStock, error)

	// Reserve: on_hand -= qty, reserved += qty solo si on_hand >= qty.
	Reserve(ctx context.Context, id string, qty decimal.Decimal) (bool, error)
	// ConsumeReserved: reserved -= qty solo si reserved >= qty (despacho).
	ConsumeReserved(ctx context.Context, id string, qty decimal.Decimal) (bool, error)
	// ReleaseReserved: reserved -= qty, on_hand += qty solo si reserved >= qty.
	ReleaseReserved(ctx context.Context, id string, qty decimal.Decimal) (bool, error)
	// AddOnHand: on_hand += qty (devolución de repuestos despachados).
	AddOnHand(ctx context.Context, id string, qty decimal.Decimal) error
}
