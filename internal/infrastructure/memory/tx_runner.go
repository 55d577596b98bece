package memory

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// TxRunner transacción en memoria: retiene el mutex del Store y restaura la
// copia previa si fn devuelve error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	woRepo repository.WorkOrderRepository,
	stockRepo repository.PartStockRepository,
	lineRepo repository.PartLineItemRepository,
	movRepo repository.InventoryMovementRepository,
) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			r.s.restore(snap)
			panic(p)
		}
		if err != nil {
			r.s.restore(snap)
		}
	}()

	return fn(
		&WorkOrderRepository{s: r.s, inTx: true},
		&PartStockRepository{s: r.s, inTx: true},
		&PartLineItemRepository{s: r.s, inTx: true},
		&InventoryMovementRepository{s: r.s, inTx: true},
	)
}
