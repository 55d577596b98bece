// Package sla evalúa vencimientos y reglas de escalamiento sobre una orden.
package sla

import (
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// EscalatedLabel etiqueta de la entrada de línea de tiempo al escalar.
const EscalatedLabel = "SLA escalated"

// ResponsePending la respuesta tiene vencimiento y no fue atendida.
func ResponsePending(wo *entity.WorkOrder) bool {
	return wo.SlaResponseDueAt != nil && wo.SlaRespondedAt == nil && wo.Status != entity.StatusCancelled
}

// ResolvePending la resolución tiene vencimiento, no fue marcada y la orden no está cerrada.
func ResolvePending(wo *entity.WorkOrder) bool {
	return wo.SlaResolveDueAt != nil && wo.SlaResolvedAt == nil &&
		wo.Status != entity.StatusCompleted && wo.Status != entity.StatusCancelled
}

// dueFor vencimiento activo para el disparador; nil si ya fue atendido.
func dueFor(wo *entity.WorkOrder, trigger string) *time.Time {
	switch trigger {
	case entity.SlaTriggerResponse:
		if ResponsePending(wo) {
			return wo.SlaResponseDueAt
		}
	case entity.SlaTriggerResolve:
		if ResolvePending(wo) {
			return wo.SlaResolveDueAt
		}
	}
	return nil
}

// IsBreached algún vencimiento activo ya pasó.
func IsBreached(wo *entity.WorkOrder, now time.Time) bool {
	for _, t := range []string{entity.SlaTriggerResponse, entity.SlaTriggerResolve} {
		if due := dueFor(wo, t); due != nil && !now.Before(*due) {
			return true
		}
	}
	return false
}

// Escalate dispara cada regla vencida (now >= due + umbral) sin EscalatedAt.
// Muta la orden y devuelve las notificaciones; una regla ya escalada no vuelve a disparar.
func Escalate(wo *entity.WorkOrder, now time.Time) (int, []entity.Notification) {
	fired := 0
	var notes []entity.Notification
	for i := range wo.SlaEscalations {
		rule := &wo.SlaEscalations[i]
		if rule.EscalatedAt != nil {
			continue
		}
		due := dueFor(wo, rule.Trigger)
		if due == nil {
			continue
		}
		fireAt := due.Add(time.Duration(rule.ThresholdMinutes) * time.Minute)
		if now.Before(fireAt) {
			continue
		}

		if wo.SlaBreachAt == nil {
			breach := now
			wo.SlaBreachAt = &breach
		}
		if rule.Priority != "" {
			wo.Priority = rule.Priority
		}
		if rule.Reassign != "" {
			wo.AssignedTo = rule.Reassign
		}
		wo.AppendTimeline(entity.TimelineEntry{
			Label:     EscalatedLabel,
			Notes:     fmt.Sprintf("%s SLA exceeded by %d minutes", rule.Trigger, rule.ThresholdMinutes),
			Type:      entity.TimelineSLA,
			CreatedAt: now,
		})
		for _, userID := range rule.EscalateTo {
			notes = append(notes, entity.Notification{
				UserID:  userID,
				Message: fmt.Sprintf("SLA escalation: %s deadline missed on work order %q", rule.Trigger, wo.Title),
				Meta: map[string]any{
					"work_order_id":     wo.ID,
					"tenant_id":         wo.TenantID,
					"trigger":           rule.Trigger,
					"threshold_minutes": rule.ThresholdMinutes,
					"type":              "sla_escalation",
				},
			})
		}
		escalated := now
		rule.EscalatedAt = &escalated
		fired++
	}
	if fired > 0 {
		wo.UpdatedAt = now
	}
	return fired, notes
}

// Reminders avisos al asignado para vencimientos dentro de [now, until].
func Reminders(wo *entity.WorkOrder, now, until time.Time) []entity.Notification {
	if wo.AssignedTo == "" {
		return nil
	}
	var notes []entity.Notification
	for _, t := range []string{entity.SlaTriggerResponse, entity.SlaTriggerResolve} {
		due := dueFor(wo, t)
		if due == nil || due.Before(now) || due.After(until) {
			continue
		}
		notes = append(notes, entity.Notification{
			UserID:  wo.AssignedTo,
			Message: fmt.Sprintf("SLA %s due at %s for work order %q", t, due.UTC().Format(time.RFC3339), wo.Title),
			Meta: map[string]any{
				"work_order_id": wo.ID,
				"tenant_id":     wo.TenantID,
				"trigger":       t,
				"due_at":        due.UTC(),
				"type":          "sla_upcoming",
			},
		})
	}
	return notes
}
