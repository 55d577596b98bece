package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

func TestWorkOrderRepository_UpdateCondicional(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().WorkOrders()
	require.NoError(t, repo.Create(ctx, &entity.WorkOrder{ID: "wo-1", Title: "A"}))

	first, err := repo.GetByID(ctx, "wo-1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "wo-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	first.Title = "B"
	require.NoError(t, repo.Update(ctx, first, 1))
	assert.Equal(t, 2, first.Version)

	second.Title = "C"
	assert.ErrorIs(t, repo.Update(ctx, second, 1), domain.ErrVersionConflict, "la escritura obsoleta debe rechazarse")

	got, _ := repo.GetByID(ctx, "wo-1")
	assert.Equal(t, "B", got.Title)

	missing, err := repo.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPartStockRepository_ReservaNuncaNegativa(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Stocks()
	require.NoError(t, repo.Create(ctx, &entity.PartStock{ID: "s-1", OnHand: decimal.NewFromInt(5)}))

	ok, err := repo.Reserve(ctx, "s-1", decimal.NewFromInt(6))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = repo.Reserve(ctx, "s-1", decimal.NewFromInt(5))
	assert.True(t, ok)

	s, _ := repo.GetByID(ctx, "s-1")
	assert.True(t, s.OnHand.IsZero())
	assert.True(t, s.Reserved.Equal(decimal.NewFromInt(5)))

	ok, _ = repo.ConsumeReserved(ctx, "s-1", decimal.NewFromInt(6))
	assert.False(t, ok)
	ok, _ = repo.Reserve(ctx, "missing", decimal.NewFromInt(1))
	assert.False(t, ok)
}

func TestTxRunner_RollbackAnteError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Stocks().Create(ctx, &entity.PartStock{ID: "s-1", OnHand: decimal.NewFromInt(10)}))

	boom := errors.New("boom")
	err := memory.NewTxRunner(store).Run(ctx, func(
		_ repository.WorkOrderRepository,
		stockRepo repository.PartStockRepository,
		_ repository.PartLineItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		ok, err := stockRepo.Reserve(ctx, "s-1", decimal.NewFromInt(4))
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, movRepo.Create(ctx, &entity.InventoryMovement{ID: "m-1", WorkOrderID: "wo-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, _ := store.Stocks().GetByID(ctx, "s-1")
	assert.True(t, s.OnHand.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.Reserved.IsZero())
	movs, _ := store.Movements().ListByWorkOrder(ctx, "wo-1", 10, 0)
	assert.Empty(t, movs)
}

func TestJobLock_TTLNoReentrante(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	lock := store.JobLock()

	ok, err := lock.Acquire(ctx, "sla-sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = lock.Acquire(ctx, "sla-sweep", time.Minute)
	assert.False(t, ok, "el mismo holder no puede re-adquirir")

	ok, _ = lock.Acquire(ctx, "otro", time.Minute)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = lock.Acquire(ctx, "sla-sweep", time.Minute)
	assert.True(t, ok, "vencido el TTL se puede adquirir de nuevo")
}

func TestWorkOrderRepository_ListadosSLA(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().WorkOrders()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	soon := now.Add(20 * time.Minute)

	require.NoError(t, repo.Create(ctx, &entity.WorkOrder{ID: "late", Status: entity.StatusAssigned, SlaResponseDueAt: &past}))
	require.NoError(t, repo.Create(ctx, &entity.WorkOrder{ID: "soon", Status: entity.StatusAssigned, SlaResolveDueAt: &soon}))
	require.NoError(t, repo.Create(ctx, &entity.WorkOrder{ID: "cancelled", Status: entity.StatusCancelled, SlaResponseDueAt: &past}))
	require.NoError(t, repo.Create(ctx, &entity.WorkOrder{ID: "done", Status: entity.StatusCompleted, SlaResolveDueAt: &past}))

	breached, err := repo.ListSlaBreached(ctx, now)
	require.NoError(t, err)
	require.Len(t, breached, 1)
	assert.Equal(t, "late", breached[0].ID)

	upcoming, err := repo.ListSlaUpcoming(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "soon", upcoming[0].ID)
}
