// Package workorder orquesta el ciclo de vida de la orden: intake, estados con
// compuerta de seguridad, aprobaciones, acuse de SLA y sincronización sin conexión.
package workorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/ledger"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/lifecycle"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/safety"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/sla"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// maxWriteAttempts reintentos ante conflicto de versión antes de rendirse.
const maxWriteAttempts = 3

// LifecycleUseCase casos de uso sobre el agregado WorkOrder.
type LifecycleUseCase struct {
	repo       repository.WorkOrderRepository
	templates  repository.TemplateRepository
	policies   sla.PolicySet
	dispatcher *notify.Dispatcher
	log        *logger.Logger
	now        func() time.Time
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	repo repository.WorkOrderRepository,
	templates repository.TemplateRepository,
	policies sla.PolicySet,
	dispatcher *notify.Dispatcher,
	log *logger.Logger,
) *LifecycleUseCase {
	if policies == nil {
		policies = sla.DefaultPolicies()
	}
	return &LifecycleUseCase{
		repo:       repo,
		templates:  templates,
		policies:   policies,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// Create da de alta una orden (opcionalmente desde plantilla) con vencimientos
// SLA y reglas de escalamiento tomados de la política de su prioridad.
func (uc *LifecycleUseCase) Create(ctx context.Context, scope domain.Scope, in dto.CreateWorkOrderRequest) (*entity.WorkOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var tpl *entity.WorkOrderTemplate
	if in.TemplateID != "" {
		t, err := uc.templates.GetByID(ctx, in.TemplateID)
		if err != nil {
			return nil, err
		}
		if t == nil || t.TenantID != scope.TenantID || (t.SiteID != "" && !scope.Allows(t.TenantID, t.SiteID)) {
			return nil, domain.ErrNotFound
		}
		tpl = t
	}

	siteID, err := resolveSite(scope, in.SiteID, tpl)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	wo := &entity.WorkOrder{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		SiteID:      siteID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		Status:      entity.StatusRequested,
		LaborCost:   decimal.Zero,
		OtherCost:   decimal.Zero,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	approvers := in.Approvers
	permits := in.RequiredPermitTypes
	points := in.LockoutPoints
	if tpl != nil {
		wo.TemplateID = tpl.ID
		wo.Title = firstNonEmpty(wo.Title, tpl.Title)
		wo.Description = firstNonEmpty(wo.Description, tpl.Description)
		wo.Priority = firstNonEmpty(wo.Priority, tpl.Priority)
		wo.LaborCost = tpl.LaborCost
		if len(approvers) == 0 {
			approvers = tpl.Approvers
		}
		if len(permits) == 0 {
			permits = tpl.RequiredPermitTypes
		}
		if len(points) == 0 {
			points = tpl.LockoutPoints
		}
	}
	if wo.Priority == "" {
		wo.Priority = entity.PriorityMedium
	}
	if in.LaborCost != nil {
		wo.LaborCost = *in.LaborCost
	}
	if in.OtherCost != nil {
		wo.OtherCost = *in.OtherCost
	}
	if wo.AssignedTo != "" {
		wo.Status = entity.StatusAssigned
	}

	wo.ApprovalSteps = lifecycle.BuildSteps(approvers)
	if len(wo.ApprovalSteps) > 0 {
		wo.CurrentApprovalStep = wo.ApprovalSteps[0].Step
		wo.ApprovalStatus = entity.ApprovalPending
	}
	wo.RequiredPermitTypes = append([]string{}, permits...)
	wo.PermitApprovals = []entity.PermitApproval{}
	wo.LockoutTagout = make([]entity.LockoutTagout, 0, len(points))
	for _, p := range points {
		wo.LockoutTagout = append(wo.LockoutTagout, entity.LockoutTagout{Point: p})
	}
	uc.policies.Apply(wo, now)
	ledger.RecomputeTotals(wo, nil)
	wo.AppendTimeline(entity.TimelineEntry{
		Label:     "Work order created",
		Type:      entity.TimelineCreated,
		CreatedAt: now,
		CreatedBy: scope.UserID,
	})

	if err := uc.repo.Create(ctx, wo); err != nil {
		return nil, err
	}

	var notes []entity.Notification
	if wo.AssignedTo != "" {
		notes = append(notes, entity.Notification{
			UserID:  wo.AssignedTo,
			Message: fmt.Sprintf("Work order %q assigned to you", wo.Title),
			Meta:    map[string]any{"work_order_id": wo.ID, "tenant_id": wo.TenantID, "type": "work_order_assigned"},
		})
	}
	if step := wo.CurrentStep(); step != nil && step.Approver != "" {
		notes = append(notes, entity.Notification{
			UserID:  step.Approver,
			Message: fmt.Sprintf("Work order %q is waiting for your approval (step %d)", wo.Title, step.Step),
			Meta:    map[string]any{"work_order_id": wo.ID, "tenant_id": wo.TenantID, "step": step.Step, "type": "approval_required"},
		})
	}
	uc.dispatcher.Dispatch(ctx, notes)
	return wo, nil
}

// Get devuelve la orden si está dentro del alcance.
func (uc *LifecycleUseCase) Get(ctx context.Context, scope domain.Scope, id string) (*entity.WorkOrder, error) {
	return uc.load(ctx, scope, id)
}

// Timeline devuelve la línea de tiempo de la orden.
func (uc *LifecycleUseCase) Timeline(ctx context.Context, scope domain.Scope, id string) (*dto.TimelineResponse, error) {
	wo, err := uc.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	items := wo.Timeline
	if items == nil {
		items = []entity.TimelineEntry{}
	}
	return &dto.TimelineResponse{WorkOrderID: wo.ID, Items: items}, nil
}

// UpdateStatus pasa primero por la compuerta de seguridad y luego por la tabla de transiciones.
func (uc *LifecycleUseCase) UpdateStatus(ctx context.Context, scope domain.Scope, id string, in dto.UpdateStatusRequest) (*entity.WorkOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, scope, id, func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error) {
		if res := safety.Evaluate(wo, in.Status); !res.Allowed {
			return nil, res.Error()
		}
		if err := lifecycle.CanTransition(wo.Status, in.Status); err != nil {
			return nil, err
		}
		lifecycle.ApplyStatus(wo, in.Status, in.Note, scope.UserID, now)
		return nil, nil
	})
}

// AdvanceApproval registra la decisión del usuario sobre el paso vigente.
func (uc *LifecycleUseCase) AdvanceApproval(ctx context.Context, scope domain.Scope, id string, in dto.ApprovalRequest) (*entity.WorkOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	decision := lifecycle.ApprovalDecision{Approved: *in.Approved, Note: in.Note, ApproverID: scope.UserID}
	return uc.mutate(ctx, scope, id, func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error) {
		return lifecycle.AdvanceApproval(wo, decision, now)
	})
}

// AcknowledgeSla marca respuesta o resolución; sin At se usa la hora actual.
func (uc *LifecycleUseCase) AcknowledgeSla(ctx context.Context, scope domain.Scope, id string, in dto.SlaAckRequest) (*entity.WorkOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, scope, id, func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error) {
		at := now
		if in.At != nil {
			at = *in.At
		}
		return nil, lifecycle.AcknowledgeSla(wo, in.Kind, at, scope.UserID, now)
	})
}

// RecordPermit registra el estado de un permiso de trabajo.
func (uc *LifecycleUseCase) RecordPermit(ctx context.Context, scope domain.Scope, id string, in dto.PermitRequest) (*entity.WorkOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, scope, id, func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error) {
		return nil, lifecycle.RecordPermit(wo, in.Type, in.Status, scope.UserID, now)
	})
}

// VerifyLoto verifica el punto de bloqueo/etiquetado en la posición index.
func (uc *LifecycleUseCase) VerifyLoto(ctx context.Context, scope domain.Scope, id string, index int) (*entity.WorkOrder, error) {
	return uc.mutate(ctx, scope, id, func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error) {
		return nil, lifecycle.VerifyLoto(wo, index, scope.UserID, now)
	})
}

// mutate lee, aplica fn y escribe condicionado a la versión leída. Ante un
// conflicto de versión relee y reintenta. Las notificaciones se despachan
// solo después de persistir.
func (uc *LifecycleUseCase) mutate(
	ctx context.Context,
	scope domain.Scope,
	id string,
	fn func(wo *entity.WorkOrder, now time.Time) ([]entity.Notification, error),
) (*entity.WorkOrder, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		wo, err := uc.load(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		expected := wo.Version
		notes, err := fn(wo, uc.now())
		if err != nil {
			return nil, err
		}
		err = uc.repo.Update(ctx, wo, expected)
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.log.Debug().Str("work_order_id", id).Int("attempt", attempt).Msg("conflicto de versión, reintentando")
			continue
		}
		if err != nil {
			return nil, err
		}
		uc.dispatcher.Dispatch(ctx, notes)
		return wo, nil
	}
	return nil, domain.ErrVersionConflict
}

// load aplica el alcance: una orden de otro tenant o sede no existe para el caller.
func (uc *LifecycleUseCase) load(ctx context.Context, scope domain.Scope, id string) (*entity.WorkOrder, error) {
	wo, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil || !scope.Allows(wo.TenantID, wo.SiteID) {
		return nil, domain.ErrNotFound
	}
	return wo, nil
}

func resolveSite(scope domain.Scope, requested string, tpl *entity.WorkOrderTemplate) (string, error) {
	site := requested
	switch {
	case scope.SiteID != "":
		if site != "" && site != scope.SiteID {
			return "", domain.ErrScopeViolation
		}
		site = scope.SiteID
	case site == "" && tpl != nil:
		site = tpl.SiteID
	}
	if site == "" {
		return "", fmt.Errorf("%w: site_id es obligatorio", domain.ErrInvalidInput)
	}
	return site, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
