package sla_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/sla"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func breachedWorkOrder() *entity.WorkOrder {
	due := t0
	return &entity.WorkOrder{
		ID:               "wo-1",
		TenantID:         "t-1",
		Title:            "Bomba P-101",
		Status:           entity.StatusAssigned,
		Priority:         entity.PriorityMedium,
		AssignedTo:       "tech-1",
		SlaResponseDueAt: &due,
		SlaEscalations: []entity.SlaEscalation{
			{Trigger: entity.SlaTriggerResponse, ThresholdMinutes: 30, EscalateTo: []string{"sup-1", "mgr-1"}, Priority: entity.PriorityHigh, Reassign: "tech-2"},
			{Trigger: entity.SlaTriggerResponse, ThresholdMinutes: 120, EscalateTo: []string{"dir-1"}},
		},
	}
}

func TestEscalate_AntesDelUmbralNoDispara(t *testing.T) {
	wo := breachedWorkOrder()
	fired, notes := sla.Escalate(wo, t0.Add(29*time.Minute))

	assert.Zero(t, fired)
	assert.Empty(t, notes)
	assert.Nil(t, wo.SlaBreachAt)
	assert.Empty(t, wo.Timeline)
}

func TestEscalate_DisparaReglaVencida(t *testing.T) {
	wo := breachedWorkOrder()
	now := t0.Add(45 * time.Minute)
	fired, notes := sla.Escalate(wo, now)

	assert.Equal(t, 1, fired)
	require.Len(t, notes, 2)
	assert.Equal(t, "sup-1", notes[0].UserID)
	assert.Equal(t, "mgr-1", notes[1].UserID)
	require.NotNil(t, wo.SlaBreachAt)
	assert.True(t, now.Equal(*wo.SlaBreachAt))
	assert.Equal(t, entity.PriorityHigh, wo.Priority)
	assert.Equal(t, "tech-2", wo.AssignedTo)
	require.Len(t, wo.Timeline, 1)
	assert.Equal(t, sla.EscalatedLabel, wo.Timeline[0].Label)
	assert.NotNil(t, wo.SlaEscalations[0].EscalatedAt)
	assert.Nil(t, wo.SlaEscalations[1].EscalatedAt)
}

// Re-evaluar una regla ya escalada es un no-op.
func TestEscalate_Idempotente(t *testing.T) {
	wo := breachedWorkOrder()
	first := t0.Add(45 * time.Minute)
	sla.Escalate(wo, first)

	fired, notes := sla.Escalate(wo, t0.Add(50*time.Minute))
	assert.Zero(t, fired)
	assert.Empty(t, notes)
	assert.True(t, first.Equal(*wo.SlaEscalations[0].EscalatedAt))
	assert.Len(t, wo.Timeline, 1)

	// La segunda regla dispara más tarde sin re-estampar la brecha.
	fired, notes = sla.Escalate(wo, t0.Add(3*time.Hour))
	assert.Equal(t, 1, fired)
	require.Len(t, notes, 1)
	assert.Equal(t, "dir-1", notes[0].UserID)
	assert.True(t, first.Equal(*wo.SlaBreachAt))
}

func TestEscalate_RespuestaAtendidaNoDispara(t *testing.T) {
	wo := breachedWorkOrder()
	responded := t0.Add(10 * time.Minute)
	wo.SlaRespondedAt = &responded

	fired, _ := sla.Escalate(wo, t0.Add(5*time.Hour))
	assert.Zero(t, fired)
	assert.False(t, sla.IsBreached(wo, t0.Add(5*time.Hour)))
}

func TestEscalate_ResolucionCompletadaNoDispara(t *testing.T) {
	due := t0
	wo := &entity.WorkOrder{
		Status:          entity.StatusCompleted,
		SlaResolveDueAt: &due,
		SlaEscalations:  []entity.SlaEscalation{{Trigger: entity.SlaTriggerResolve, EscalateTo: []string{"sup-1"}}},
	}
	fired, _ := sla.Escalate(wo, t0.Add(time.Hour))
	assert.Zero(t, fired)
}

func TestReminders_DentroDeVentana(t *testing.T) {
	respDue := t0.Add(10 * time.Minute)
	resolveDue := t0.Add(5 * time.Hour)
	wo := &entity.WorkOrder{
		AssignedTo:       "tech-1",
		Status:           entity.StatusAssigned,
		SlaResponseDueAt: &respDue,
		SlaResolveDueAt:  &resolveDue,
	}

	notes := sla.Reminders(wo, t0, t0.Add(time.Hour))
	require.Len(t, notes, 1)
	assert.Equal(t, "tech-1", notes[0].UserID)
	assert.Equal(t, entity.SlaTriggerResponse, notes[0].Meta["trigger"])

	wo.AssignedTo = ""
	assert.Empty(t, sla.Reminders(wo, t0, t0.Add(time.Hour)))
}

func TestPolicySet_Apply(t *testing.T) {
	ps := sla.PolicySet{
		entity.PriorityHigh: {
			Priority: entity.PriorityHigh, ResponseMinutes: 30, ResolveMinutes: 240,
			Escalations: []entity.SlaEscalation{{Trigger: entity.SlaTriggerResponse, ThresholdMinutes: 15, EscalateTo: []string{"sup"}}},
		},
	}
	wo := &entity.WorkOrder{Priority: entity.PriorityHigh}
	ps.Apply(wo, t0)

	require.NotNil(t, wo.SlaResponseDueAt)
	assert.True(t, t0.Add(30*time.Minute).Equal(*wo.SlaResponseDueAt))
	assert.True(t, t0.Add(4*time.Hour).Equal(*wo.SlaResolveDueAt))
	require.Len(t, wo.SlaEscalations, 1)

	wo.SlaEscalations[0].EscalateTo[0] = "otro"
	assert.Equal(t, "sup", ps[entity.PriorityHigh].Escalations[0].EscalateTo[0], "la política no comparte slices con la orden")
}

func TestDefaultPolicies_CubreTodasLasPrioridades(t *testing.T) {
	ps := sla.DefaultPolicies()
	for _, p := range []string{entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityCritical} {
		assert.Contains(t, ps, p)
	}
}
