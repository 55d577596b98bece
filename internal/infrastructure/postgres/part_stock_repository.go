package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.PartStockRepository = (*PartStockRepo)(nil)

// PartStockRepo existencias sobre PostgreSQL; cada mutación es un UPDATE condicional.
type PartStockRepo struct {
	q Querier
}

// NewPartStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartStockRepository(q Querier) *PartStockRepo {
	return &PartStockRepo{q: q}
}

// Create persiste un registro de existencias.
func (r *PartStockRepo) Create(ctx context.Context, s *entity.PartStock) error {
	query := `
		INSERT INTO part_stocks (id, tenant_id, site_id, part_id, on_hand, reserved, unit_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, s.SiteID, s.PartID, s.OnHand, s.Reserved, s.UnitCost, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapInsert("insert part stock", err)
	}
	return nil
}

// GetByID obtiene existencias; nil, nil si no existe.
func (r *PartStockRepo) GetByID(ctx context.Context, id string) (*entity.PartStock, error) {
	query := `
		SELECT id, tenant_id, site_id, part_id, on_hand, reserved, unit_cost, created_at, updated_at
		FROM part_stocks WHERE id = $1`
	var s entity.PartStock
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TenantID, &s.SiteID, &s.PartID, &s.OnHand, &s.Reserved, &s.UnitCost, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part stock: %w", err)
	}
	return &s, nil
}

// Reserve on_hand -= qty, reserved += qty si on_hand >= qty.
func (r *PartStockRepo) Reserve(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.conditional(ctx, "reserve", `
		UPDATE part_stocks SET on_hand = on_hand - $2, reserved = reserved + $2, updated_at = now()
		WHERE id = $1 AND on_hand >= $2`, id, qty)
}

// ConsumeReserved reserved -= qty si reserved >= qty.
func (r *PartStockRepo) ConsumeReserved(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.conditional(ctx, "consume reserved", `
		UPDATE part_stocks SET reserved = reserved - $2, updated_at = now()
		WHERE id = $1 AND reserved >= $2`, id, qty)
}

// ReleaseReserved reserved -= qty, on_hand += qty si reserved >= qty.
func (r *PartStockRepo) ReleaseReserved(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	return r.conditional(ctx, "release reserved", `
		UPDATE part_stocks SET reserved = reserved - $2, on_hand = on_hand + $2, updated_at = now()
		WHERE id = $1 AND reserved >= $2`, id, qty)
}

// AddOnHand on_hand += qty.
func (r *PartStockRepo) AddOnHand(ctx context.Context, id string, qty decimal.Decimal) error {
	ok, err := r.conditional(ctx, "add on hand", `
		UPDATE part_stocks SET on_hand = on_hand + $2, updated_at = now()
		WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartStockRepo) conditional(ctx context.Context, op, query, id string, qty decimal.Decimal) (bool, error) {
	cmd, err := r.q.Exec(ctx, query, id, qty)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return cmd.RowsAffected() == 1, nil
}
