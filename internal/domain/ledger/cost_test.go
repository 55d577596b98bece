package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/ledger"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestRecomputeTotals_ExcluyeBorrados(t *testing.T) {
	deleted := time.Now()
	wo := &entity.WorkOrder{LaborCost: dec(100), OtherCost: dec(20)}
	items := []*entity.WorkOrderPartLineItem{
		{Quantity: dec(3), QtyIssued: dec(2), QtyReturned: dec(1), UnitCost: dec(5)},
		{Quantity: dec(4), QtyIssued: dec(4), UnitCost: dec(10)},
		{Quantity: dec(2), QtyIssued: dec(2), UnitCost: dec(50), DeletedAt: &deleted},
	}

	ledger.RecomputeTotals(wo, items)

	assert.True(t, wo.PartsCostTotal.Equal(dec(45)), "5*(2-1) + 10*4")
	assert.True(t, wo.PartsCost.Equal(wo.PartsCostTotal))
	assert.True(t, wo.TotalCost.Equal(dec(165)))
}

func TestRecomputeTotals_SinItems(t *testing.T) {
	wo := &entity.WorkOrder{PartsCostTotal: dec(99)}
	ledger.RecomputeTotals(wo, nil)
	assert.True(t, wo.PartsCostTotal.IsZero())
	assert.True(t, wo.TotalCost.IsZero())
}
