package workorder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/conflict"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/ledger"
)

// Campos que un cliente sin conexión puede editar.
const (
	syncTitle       = "title"
	syncDescription = "description"
	syncPriority    = "priority"
	syncAssignedTo  = "assigned_to"
	syncLaborCost   = "labor_cost"
	syncOtherCost   = "other_cost"
)

// Sync reproduce una edición hecha sin conexión contra el documento actual.
// Sin conflictos se persiste; con conflictos se devuelve el merge con
// ApplyChange=false y no se escribe nada.
func (uc *LifecycleUseCase) Sync(ctx context.Context, scope domain.Scope, id string, in dto.SyncRequest) (*dto.SyncResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	change, err := normalizeSyncPayload(in.Payload)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		wo, err := uc.load(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		snapshot := conflict.Snapshot{ID: wo.ID, Version: wo.Version, UpdatedAt: wo.UpdatedAt, Payload: syncPayload(wo)}

		var res conflict.Result
		if in.Version != nil {
			res = conflict.ResolveWorkOrderConflict(snapshot, conflict.Change{ID: id, Version: *in.Version, Payload: change})
		} else {
			res = conflict.ResolveByTimestamp(snapshot, conflict.Change{ID: id, ClientUpdatedAt: *in.ClientUpdatedAt, Payload: change})
		}
		if !res.ApplyChange {
			return &dto.SyncResponse{Merged: res.Merged, Conflicts: res.Conflicts, ApplyChange: false}, nil
		}

		expected := wo.Version
		now := uc.now()
		applySyncPayload(wo, res.Merged)
		wo.UpdatedAt = now
		wo.AppendTimeline(entity.TimelineEntry{
			Label:     "Offline changes synced",
			Notes:     "fields: " + strings.Join(sortedKeys(change), ", "),
			Type:      entity.TimelineSync,
			CreatedAt: now,
			CreatedBy: scope.UserID,
		})
		err = uc.repo.Update(ctx, wo, expected)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &dto.SyncResponse{Merged: res.Merged, Conflicts: res.Conflicts, ApplyChange: true, WorkOrder: wo}, nil
	}
	return nil, domain.ErrVersionConflict
}

// syncPayload representación comparable de los campos editables; los montos van como texto canónico.
func syncPayload(wo *entity.WorkOrder) map[string]any {
	return map[string]any{
		syncTitle:       wo.Title,
		syncDescription: wo.Description,
		syncPriority:    wo.Priority,
		syncAssignedTo:  wo.AssignedTo,
		syncLaborCost:   wo.LaborCost.String(),
		syncOtherCost:   wo.OtherCost.String(),
	}
}

// normalizeSyncPayload valida claves y tipos y lleva los valores a la forma de syncPayload.
func normalizeSyncPayload(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case syncTitle, syncDescription, syncAssignedTo:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s debe ser texto", domain.ErrInvalidInput, k)
			}
			if k == syncTitle && s == "" {
				return nil, fmt.Errorf("%w: title no puede quedar vacío", domain.ErrInvalidInput)
			}
			out[k] = s
		case syncPriority:
			s, ok := v.(string)
			if !ok || !entity.IsValidPriority(s) {
				return nil, fmt.Errorf("%w: priority inválida", domain.ErrInvalidInput)
			}
			out[k] = s
		case syncLaborCost, syncOtherCost:
			d, err := toDecimal(v)
			if err != nil || d.IsNegative() {
				return nil, fmt.Errorf("%w: %s debe ser un monto no negativo", domain.ErrInvalidInput, k)
			}
			out[k] = d.String()
		default:
			return nil, fmt.Errorf("%w: campo no sincronizable %q", domain.ErrInvalidInput, k)
		}
	}
	return out, nil
}

func applySyncPayload(wo *entity.WorkOrder, merged map[string]any) {
	for k, v := range merged {
		switch k {
		case syncTitle:
			wo.Title = v.(string)
		case syncDescription:
			wo.Description = v.(string)
		case syncPriority:
			wo.Priority = v.(string)
		case syncAssignedTo:
			wo.AssignedTo = v.(string)
		case syncLaborCost:
			wo.LaborCost = decimal.RequireFromString(v.(string))
		case syncOtherCost:
			wo.OtherCost = decimal.RequireFromString(v.(string))
		}
	}
	ledger.RefreshTotal(wo)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	}
	return decimal.Zero, fmt.Errorf("tipo no numérico %T", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

