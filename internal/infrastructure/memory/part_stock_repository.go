package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// PartStockRepository existencias en memoria con actualizaciones condicionales.
type PartStockRepository struct {
	s    *Store
	inTx bool
}

var _ repository.PartStockRepository = (*PartStockRepository)(nil)

// Create guarda un registro de existencias.
func (r *PartStockRepository) Create(_ context.Context, stock *entity.PartStock) (err error) {
	r.s.view(r.inTx, func() {
		if _, ok := r.s.stocks[stock.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		c := *stock
		r.s.stocks[stock.ID] = &c
	})
	return err
}

// GetByID devuelve nil, nil si no existe.
func (r *PartStockRepository) GetByID(_ context.Context, id string) (stock *entity.PartStock, err error) {
	r.s.view(r.inTx, func() {
		if cur, ok := r.s.stocks[id]; ok {
			c := *cur
			stock = &c
		}
	})
	return stock, nil
}

// Reserve on_hand -= qty, reserved += qty si on_hand >= qty.
func (r *PartStockRepository) Reserve(_ context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.apply(id, func(s *entity.PartStock) bool {
		if s.OnHand.LessThan(qty) {
			return false
		}
		s.OnHand = s.OnHand.Sub(qty)
		s.Reserved = s.Reserved.Add(qty)
		return true
	}), nil
}

// ConsumeReserved reserved -= qty si reserved >= qty.
func (r *PartStockRepository) ConsumeReserved(_ context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.apply(id, func(s *entity.PartStock) bool {
		if s.Reserved.LessThan(qty) {
			return false
		}
		s.Reserved = s.Reserved.Sub(qty)
		return true
	}), nil
}

// ReleaseReserved reserved -= qty, on_hand += qty si reserved >= qty.
func (r *PartStockRepository) ReleaseReserved(_ context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.apply(id, func(s *entity.PartStock) bool {
		if s.Reserved.LessThan(qty) {
			return false
		}
		s.Reserved = s.Reserved.Sub(qty)
		s.OnHand = s.OnHand.Add(qty)
		return true
	}), nil
}

// AddOnHand on_hand += qty.
func (r *PartStockRepository) AddOnHand(_ context.Context, id string, qty decimal.Decimal) error {
	if !r.apply(id, func(s *entity.PartStock) bool {
		s.OnHand = s.OnHand.Add(qty)
		return true
	}) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartStockRepository) apply(id string, fn func(*entity.PartStock) bool) (ok bool) {
	r.s.view(r.inTx, func() {
		cur, exists := r.s.stocks[id]
		if !exists {
			return
		}
		next := *cur
		if ok = fn(&next); ok {
			next.UpdatedAt = r.s.clock()
			r.s.stocks[id] = &next
		}
	})
	return ok
}
