package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// RecordPermit registra (o reemplaza) el estado de un permiso de trabajo.
func RecordPermit(wo *entity.WorkOrder, permitType, status, actor string, now time.Time) error {
	if permitType == "" {
		return domain.ErrInvalidInput
	}
	switch status {
	case entity.ApprovalPending, entity.ApprovalApproved, entity.ApprovalRejected:
	default:
		return domain.ErrInvalidInput
	}
	replaced := false
	for i := range wo.PermitApprovals {
		if wo.PermitApprovals[i].Type == permitType {
			wo.PermitApprovals[i].Status = status
			replaced = true
		}
	}
	if !replaced {
		wo.PermitApprovals = append(wo.PermitApprovals, entity.PermitApproval{Type: permitType, Status: status})
	}
	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     fmt.Sprintf("Permit %s %s", permitType, status),
		Type:      entity.TimelineSafety,
		CreatedAt: now,
		CreatedBy: actor,
	})
	return nil
}

// VerifyLoto verifica el punto de bloqueo en la posición index.
func VerifyLoto(wo *entity.WorkOrder, index int, actor string, now time.Time) error {
	if index < 0 || index >= len(wo.LockoutTagout) {
		return domain.ErrInvalidInput
	}
	point := &wo.LockoutTagout[index]
	if point.VerifiedAt != nil {
		return nil
	}
	at := now
	point.VerifiedAt = &at
	point.VerifiedBy = actor
	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     fmt.Sprintf("Lockout point %q verified", point.Point),
		Type:      entity.TimelineSafety,
		CreatedAt: now,
		CreatedBy: actor,
	})
	return nil
}
