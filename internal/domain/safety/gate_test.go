package safety_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/safety"
)

func newWorkOrder() *entity.WorkOrder {
	return &entity.WorkOrder{ID: "wo-1", Status: entity.StatusInProgress}
}

func TestEvaluate_SinPrecondiciones_Permite(t *testing.T) {
	res := safety.Evaluate(newWorkOrder(), entity.StatusCompleted)
	assert.True(t, res.Allowed)
	assert.NoError(t, res.Error())
}

func TestEvaluate_PermisosPendientes_NombraLosTipos(t *testing.T) {
	wo := newWorkOrder()
	wo.RequiredPermitTypes = []string{"hot_work", "confined_space", "hot_work"}
	wo.PermitApprovals = []entity.PermitApproval{
		{Type: "confined_space", Status: entity.ApprovalApproved},
		{Type: "hot_work", Status: entity.ApprovalPending},
	}

	res := safety.Evaluate(wo, entity.StatusCompleted)
	require.False(t, res.Allowed)
	assert.Equal(t, []string{"hot_work"}, res.Missing)

	err := res.Error()
	assert.True(t, errors.Is(err, domain.ErrPermitsRequired))
	assert.Contains(t, err.Error(), "hot_work")
}

func TestEvaluate_LotoSinVerificar_Bloquea(t *testing.T) {
	wo := newWorkOrder()
	now := time.Now()
	wo.LockoutTagout = []entity.LockoutTagout{{Point: "breaker-1", VerifiedAt: &now}, {Point: "valve-2"}}

	res := safety.Evaluate(wo, entity.StatusInProgress)
	require.False(t, res.Allowed)
	assert.ErrorIs(t, res.Error(), domain.ErrLotoIncomplete)
	assert.True(t, safety.HasUnverifiedLoto(wo))
}

// Permisos se evalúan antes que LOTO.
func TestEvaluate_OrdenDeChequeos(t *testing.T) {
	wo := newWorkOrder()
	wo.RequiredPermitTypes = []string{"electrical"}
	wo.LockoutTagout = []entity.LockoutTagout{{Point: "panel"}}

	res := safety.Evaluate(wo, entity.StatusCompleted)
	assert.ErrorIs(t, res.Error(), domain.ErrPermitsRequired)
}

func TestEvaluate_CompletarConAprobacionPendiente(t *testing.T) {
	wo := newWorkOrder()
	wo.ApprovalSteps = []entity.ApprovalStep{{Step: 1, Status: entity.ApprovalPending, Approver: "u-1"}}
	wo.CurrentApprovalStep = 1

	res := safety.Evaluate(wo, entity.StatusCompleted)
	assert.ErrorIs(t, res.Error(), domain.ErrApprovalPending)

	// La aprobación solo se exige al completar.
	assert.True(t, safety.Evaluate(wo, entity.StatusPendingApproval).Allowed)

	wo.ApprovalSteps[0].Status = entity.ApprovalApproved
	assert.True(t, safety.Evaluate(wo, entity.StatusCompleted).Allowed)
}

func TestEvaluate_CancelarYEsperaNoSeBloquean(t *testing.T) {
	wo := newWorkOrder()
	wo.RequiredPermitTypes = []string{"hot_work"}
	wo.LockoutTagout = []entity.LockoutTagout{{Point: "panel"}}

	assert.True(t, safety.Evaluate(wo, entity.StatusCancelled).Allowed)
	assert.True(t, safety.Evaluate(wo, entity.StatusOnHold).Allowed)
	assert.False(t, safety.Evaluate(wo, entity.StatusAssigned).Allowed)
}

func TestEvaluate_NoMutaLaOrden(t *testing.T) {
	wo := newWorkOrder()
	wo.RequiredPermitTypes = []string{"hot_work"}
	before := wo.Clone()

	safety.Evaluate(wo, entity.StatusCompleted)
	assert.Equal(t, before, wo)
}
