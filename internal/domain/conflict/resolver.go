// Package conflict resuelve ediciones hechas sin conexión contra el documento actual.
// Funciones puras; persistir el resultado es responsabilidad del llamador.
package conflict

import (
	"reflect"
	"sort"
	"time"
)

// Snapshot estado vigente en el servidor.
type Snapshot struct {
	ID        string
	Version   int
	UpdatedAt time.Time
	Payload   map[string]any
}

// Change edición enviada por el cliente.
type Change struct {
	ID              string
	Version         int
	ClientUpdatedAt time.Time
	Payload         map[string]any
}

// Result resultado de la fusión. ApplyChange=false significa que no debe
// persistirse a ciegas: los conflictos se muestran al usuario.
type Result struct {
	Merged      map[string]any `json:"merged"`
	Conflicts   []string       `json:"conflicts"`
	ApplyChange bool           `json:"applyChange"`
}

// ResolveWorkOrderConflict usa el número de versión como señal de obsolescencia.
func ResolveWorkOrderConflict(snapshot Snapshot, change Change) Result {
	return merge(snapshot.Payload, change.Payload, change.Version < snapshot.Version)
}

// ResolveByTimestamp igual que ResolveWorkOrderConflict pero compara
// ClientUpdatedAt contra UpdatedAt del servidor.
func ResolveByTimestamp(snapshot Snapshot, change Change) Result {
	return merge(snapshot.Payload, change.Payload, change.ClientUpdatedAt.Before(snapshot.UpdatedAt))
}

func merge(base, patch map[string]any, stale bool) Result {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	conflicts := []string{}
	for k, v := range patch {
		if stale {
			if current, ok := base[k]; !ok || !reflect.DeepEqual(current, v) {
				conflicts = append(conflicts, k)
			}
		}
		merged[k] = v
	}
	sort.Strings(conflicts)
	return Result{Merged: merged, Conflicts: conflicts, ApplyChange: len(conflicts) == 0}
}
