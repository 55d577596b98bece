package lifecycle

import (
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// AcknowledgeSla marca la respuesta o la resolución (kind) en at.
func AcknowledgeSla(wo *entity.WorkOrder, kind string, at time.Time, actor string, now time.Time) error {
	stamp := at
	switch kind {
	case entity.SlaTriggerResponse:
		wo.SlaRespondedAt = &stamp
	case entity.SlaTriggerResolve:
		wo.SlaResolvedAt = &stamp
	default:
		return domain.ErrInvalidInput
	}
	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     "SLA " + kind + " acknowledged",
		Type:      entity.TimelineSLA,
		CreatedAt: now,
		CreatedBy: actor,
	})
	return nil
}
