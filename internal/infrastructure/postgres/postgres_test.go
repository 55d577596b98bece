package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
)

// testPool conecta a TEST_DATABASE_URL; sin la variable los tests se omiten.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func TestWorkOrderRepo_ActualizacionCondicional(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewWorkOrderRepository(pool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	due := now.Add(-time.Minute)
	wo := &entity.WorkOrder{
		ID: uuid.New().String(), TenantID: "t-" + uuid.New().String(), SiteID: "s-1", Title: "Bomba",
		Status: entity.StatusAssigned, Priority: entity.PriorityHigh, SlaResponseDueAt: &due,
		LaborCost: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, wo))

	got, err := repo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Version)
	assert.True(t, got.LaborCost.Equal(decimal.NewFromInt(10)))

	got.Title = "Bomba 2"
	require.NoError(t, repo.Update(ctx, got, 1))
	assert.Equal(t, 2, got.Version)
	assert.ErrorIs(t, repo.Update(ctx, got, 1), domain.ErrVersionConflict)

	breached, err := repo.ListSlaBreached(ctx, now)
	require.NoError(t, err)
	var found bool
	for _, b := range breached {
		found = found || b.ID == wo.ID
	}
	assert.True(t, found)

	missing, err := repo.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPartStockRepo_NoQuedaNegativo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewPartStockRepository(pool)

	now := time.Now().UTC()
	s := &entity.PartStock{
		ID: uuid.New().String(), TenantID: "t-" + uuid.New().String(), SiteID: "s-1", PartID: "p-1",
		OnHand: decimal.NewFromInt(5), Reserved: decimal.Zero, UnitCost: decimal.NewFromInt(3),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, s))

	ok, err := repo.Reserve(ctx, s.ID, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Reserve(ctx, s.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.OnHand.Equal(decimal.NewFromInt(1)))
	assert.True(t, got.Reserved.Equal(decimal.NewFromInt(4)))
}

// Decrementos condicionales simultáneos sobre la misma fila: sin actualizaciones perdidas.
func TestPartStockRepo_ReservasConcurrentes(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewPartStockRepository(pool)

	now := time.Now().UTC()
	s := &entity.PartStock{
		ID: uuid.New().String(), TenantID: "t-" + uuid.New().String(), SiteID: "s-1", PartID: "p-1",
		OnHand: decimal.NewFromInt(10), Reserved: decimal.Zero, UnitCost: decimal.NewFromInt(3),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, s))

	const workers = 30
	var (
		wg       sync.WaitGroup
		reserved atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Reserve(ctx, s.ID, decimal.NewFromInt(1))
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if ok {
				reserved.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, reserved.Load())
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.OnHand.IsZero(), "onHand=%s", got.OnHand)
	assert.True(t, got.Reserved.Equal(decimal.NewFromInt(10)), "reserved=%s", got.Reserved)
}

func TestPartLineItemRepo_UnaLineaActivaPorCosto(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	tenant := "t-" + uuid.New().String()

	wo := &entity.WorkOrder{ID: uuid.New().String(), TenantID: tenant, SiteID: "s-1", Title: "Compresor",
		Status: entity.StatusInProgress, Priority: entity.PriorityMedium, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewWorkOrderRepository(pool).Create(ctx, wo))
	stock := &entity.PartStock{ID: uuid.New().String(), TenantID: tenant, SiteID: "s-1", PartID: "filtro",
		OnHand: decimal.NewFromInt(10), Reserved: decimal.Zero, UnitCost: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewPartStockRepository(pool).Create(ctx, stock))

	lines := postgres.NewPartLineItemRepository(pool)
	line := func(cost int64, at time.Time) *entity.WorkOrderPartLineItem {
		return &entity.WorkOrderPartLineItem{ID: uuid.New().String(), TenantID: tenant, SiteID: "s-1",
			WorkOrderID: wo.ID, StockID: stock.ID, Quantity: decimal.NewFromInt(1), QtyIssued: decimal.Zero,
			QtyReturned: decimal.Zero, UnitCost: decimal.NewFromInt(cost), CreatedAt: at, UpdatedAt: at}
	}
	require.NoError(t, lines.Create(ctx, line(5, now)))
	require.NoError(t, lines.Create(ctx, line(15, now.Add(time.Second))))
	assert.ErrorIs(t, lines.Create(ctx, line(5, now.Add(2*time.Second))), domain.ErrDuplicate)

	got, err := lines.ListActiveByStock(ctx, wo.ID, stock.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].UnitCost.Equal(decimal.NewFromInt(5)))
	assert.True(t, got[1].UnitCost.Equal(decimal.NewFromInt(15)))
}

func TestTxRunner_RollbackAnteError(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	id := uuid.New().String()

	err := runner.Run(ctx, func(_ repository.WorkOrderRepository, stocks repository.PartStockRepository, _ repository.PartLineItemRepository, _ repository.InventoryMovementRepository) error {
		now := time.Now().UTC()
		require.NoError(t, stocks.Create(ctx, &entity.PartStock{
			ID: id, TenantID: "t-" + id, SiteID: "s", PartID: "p", OnHand: decimal.NewFromInt(1),
			Reserved: decimal.Zero, UnitCost: decimal.Zero, CreatedAt: now, UpdatedAt: now,
		}))
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := postgres.NewPartStockRepository(pool).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobLock_SoloUnTitular(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	lock := postgres.NewJobLock(pool)
	name := "test-" + uuid.New().String()

	ok, err := lock.Acquire(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = lock.Acquire(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
