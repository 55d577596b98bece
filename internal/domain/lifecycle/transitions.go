// Package lifecycle contiene la máquina de estados de la orden de trabajo y la
// cadena de aprobación. Todo cambio se acompaña de una entrada en la línea de tiempo.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

var transitions = map[string][]string{
	entity.StatusRequested: {
		entity.StatusAssigned, entity.StatusInProgress, entity.StatusOnHold,
		entity.StatusPendingApproval, entity.StatusCancelled,
	},
	entity.StatusAssigned: {
		entity.StatusRequested, entity.StatusInProgress, entity.StatusOnHold,
		entity.StatusPendingApproval, entity.StatusCancelled,
	},
	entity.StatusInProgress: {
		entity.StatusCompleted, entity.StatusOnHold, entity.StatusPendingApproval,
		entity.StatusCancelled,
	},
	entity.StatusOnHold: {
		entity.StatusAssigned, entity.StatusInProgress, entity.StatusPendingApproval,
		entity.StatusCancelled,
	},
	entity.StatusPendingApproval: {
		entity.StatusAssigned, entity.StatusInProgress, entity.StatusCompleted,
		entity.StatusOnHold, entity.StatusCancelled,
	},
}

// CanTransition valida el paso from -> to. completed y cancelled son terminales.
func CanTransition(from, to string) error {
	if !entity.IsValidStatus(to) {
		return domain.ErrInvalidInput
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return domain.NewBlockedError(domain.ErrInvalidTransition,
		fmt.Sprintf("no se puede pasar de %s a %s", from, to))
}

// ApplyStatus fija el estado y registra la entrada "status". No valida: el caller
// ya pasó por la compuerta de seguridad y CanTransition.
func ApplyStatus(wo *entity.WorkOrder, status, note, actor string, now time.Time) {
	from := wo.Status
	wo.Status = status
	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     fmt.Sprintf("Status changed from %s to %s", from, status),
		Notes:     note,
		Type:      entity.TimelineStatus,
		CreatedAt: now,
		CreatedBy: actor,
	})
}
