package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ApprovalDecision decisión de un aprobador sobre el paso actual.
type ApprovalDecision struct {
	Approved   bool
	Note       string
	ApproverID string
}

// AdvanceApproval aplica la decisión sobre la cadena de aprobación.
//
// Sin pasos definidos la decisión se aplica directamente a ApprovalStatus.
// Con pasos, actúa sobre el paso CurrentApprovalStep (debe estar pendiente);
// si se aprueba y quedan pasos avanza y notifica al siguiente aprobador.
// Devuelve las notificaciones a despachar.
func AdvanceApproval(wo *entity.WorkOrder, d ApprovalDecision, now time.Time) ([]entity.Notification, error) {
	outcome := entity.ApprovalRejected
	if d.Approved {
		outcome = entity.ApprovalApproved
	}

	if len(wo.ApprovalSteps) == 0 {
		wo.ApprovalStatus = outcome
		wo.UpdatedAt = now
		wo.AppendTimeline(entity.TimelineEntry{
			Label:     "Approval " + outcome,
			Notes:     d.Note,
			Type:      entity.TimelineApproval,
			CreatedAt: now,
			CreatedBy: d.ApproverID,
		})
		return nil, nil
	}

	step := wo.CurrentStep()
	if step == nil || step.Status != entity.ApprovalPending {
		return nil, domain.ErrNoPendingApproval
	}
	at := now
	step.Status = outcome
	step.ApprovedAt = &at
	step.Approver = d.ApproverID
	step.Note = d.Note
	stepNumber := step.Step

	var notes []entity.Notification
	next := nextStep(wo, stepNumber)
	switch {
	case d.Approved && next != nil:
		wo.CurrentApprovalStep = next.Step
		wo.ApprovalStatus = entity.ApprovalPending
		if next.Approver != "" {
			notes = append(notes, entity.Notification{
				UserID:  next.Approver,
				Message: fmt.Sprintf("Work order %q is waiting for your approval (step %d)", wo.Title, next.Step),
				Meta: map[string]any{
					"work_order_id": wo.ID,
					"tenant_id":     wo.TenantID,
					"step":          next.Step,
					"type":          "approval_required",
				},
			})
		}
	default:
		wo.ApprovalStatus = outcome
	}

	wo.UpdatedAt = now
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     fmt.Sprintf("Approval step %d %s", stepNumber, outcome),
		Notes:     d.Note,
		Type:      entity.TimelineApproval,
		CreatedAt: now,
		CreatedBy: d.ApproverID,
	})
	return notes, nil
}

// nextStep el paso con menor número mayor que current.
func nextStep(wo *entity.WorkOrder, current int) *entity.ApprovalStep {
	var next *entity.ApprovalStep
	for i := range wo.ApprovalSteps {
		s := &wo.ApprovalSteps[i]
		if s.Step > current && (next == nil || s.Step < next.Step) {
			next = s
		}
	}
	return next
}

// BuildSteps arma la cadena a partir de la lista ordenada de aprobadores.
func BuildSteps(approvers []string) []entity.ApprovalStep {
	steps := make([]entity.ApprovalStep, 0, len(approvers))
	for i, a := range approvers {
		steps = append(steps, entity.ApprovalStep{Step: i + 1, Status: entity.ApprovalPending, Approver: a})
	}
	return steps
}
