// Package safety contiene las precondiciones de seguridad que se evalúan antes
// de cualquier cambio de estado. Funciones puras: sin I/O y sin mutar la orden.
package safety

import (
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// GuardResult resultado de la evaluación de la compuerta.
type GuardResult struct {
	Allowed bool
	Err     error    // uno de domain.ErrPermitsRequired, ErrLotoIncomplete, ErrApprovalPending
	Reason  string   // legible, poblado cuando no está permitido
	Missing []string // permisos faltantes
}

// Error devuelve el resultado como *domain.BlockedError, o nil si está permitido.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return domain.NewBlockedError(r.Err, r.Reason, r.Missing...)
}

// Gated indica si el estado destino pasa por la compuerta; cancelled y on_hold quedan fuera.
func Gated(target string) bool {
	return target != entity.StatusCancelled && target != entity.StatusOnHold
}

// Evaluate aplica en orden: permisos, LOTO y aprobación (solo al completar).
func Evaluate(wo *entity.WorkOrder, target string) GuardResult {
	if !Gated(target) {
		return GuardResult{Allowed: true}
	}
	if pending := PendingPermits(wo); len(pending) > 0 {
		return GuardResult{
			Err:     domain.ErrPermitsRequired,
			Reason:  "se requieren permisos aprobados",
			Missing: pending,
		}
	}
	if HasUnverifiedLoto(wo) {
		return GuardResult{
			Err:    domain.ErrLotoIncomplete,
			Reason: "hay puntos de bloqueo/etiquetado sin verificar",
		}
	}
	if target == entity.StatusCompleted && len(wo.ApprovalSteps) > 0 {
		step := wo.CurrentStep()
		if step == nil || step.Status != entity.ApprovalApproved {
			return GuardResult{
				Err:    domain.ErrApprovalPending,
				Reason: "la orden tiene aprobaciones pendientes",
			}
		}
	}
	return GuardResult{Allowed: true}
}

// PendingPermits tipos requeridos sin un permiso aprobado, en el orden declarado.
func PendingPermits(wo *entity.WorkOrder) []string {
	approved := make(map[string]bool, len(wo.PermitApprovals))
	for _, p := range wo.PermitApprovals {
		if p.Status == entity.ApprovalApproved {
			approved[p.Type] = true
		}
	}
	var pending []string
	seen := make(map[string]bool, len(wo.RequiredPermitTypes))
	for _, t := range wo.RequiredPermitTypes {
		if approved[t] || seen[t] {
			continue
		}
		seen[t] = true
		pending = append(pending, t)
	}
	return pending
}

// HasUnverifiedLoto true si algún punto LOTO no tiene VerifiedAt.
func HasUnverifiedLoto(wo *entity.WorkOrder) bool {
	for _, l := range wo.LockoutTagout {
		if l.VerifiedAt == nil {
			return true
		}
	}
	return false
}
