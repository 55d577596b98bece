package sla

import (
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// PolicySet políticas SLA indexadas por prioridad.
type PolicySet map[string]entity.SlaPolicy

// DefaultPolicies tiempos usados cuando no hay archivo de políticas.
func DefaultPolicies() PolicySet {
	return PolicySet{
		entity.PriorityCritical: {Priority: entity.PriorityCritical, ResponseMinutes: 15, ResolveMinutes: 240},
		entity.PriorityHigh:     {Priority: entity.PriorityHigh, ResponseMinutes: 60, ResolveMinutes: 480},
		entity.PriorityMedium:   {Priority: entity.PriorityMedium, ResponseMinutes: 240, ResolveMinutes: 1440},
		entity.PriorityLow:      {Priority: entity.PriorityLow, ResponseMinutes: 1440, ResolveMinutes: 4320},
	}
}

// Apply fija vencimientos y copia las reglas de escalamiento de la prioridad de la orden.
// Un tiempo en cero deja ese vencimiento sin definir.
func (ps PolicySet) Apply(wo *entity.WorkOrder, now time.Time) {
	p, ok := ps[wo.Priority]
	if !ok {
		return
	}
	if p.ResponseMinutes > 0 {
		due := now.Add(time.Duration(p.ResponseMinutes) * time.Minute)
		wo.SlaResponseDueAt = &due
	}
	if p.ResolveMinutes > 0 {
		due := now.Add(time.Duration(p.ResolveMinutes) * time.Minute)
		wo.SlaResolveDueAt = &due
	}
	wo.SlaEscalations = make([]entity.SlaEscalation, 0, len(p.Escalations))
	for _, rule := range p.Escalations {
		rule.EscalateTo = append([]string(nil), rule.EscalateTo...)
		rule.EscalatedAt = nil
		wo.SlaEscalations = append(wo.SlaEscalations, rule)
	}
}
