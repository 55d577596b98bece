package conflict_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/conflict"
)

func TestResolveWorkOrderConflict_ClienteAlDia(t *testing.T) {
	snap := conflict.Snapshot{ID: "wo-1", Version: 5, Payload: map[string]any{"priority": "low", "title": "Bomba"}}
	change := conflict.Change{ID: "wo-1", Version: 5, Payload: map[string]any{"priority": "high"}}

	res := conflict.ResolveWorkOrderConflict(snap, change)
	assert.True(t, res.ApplyChange)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, map[string]any{"priority": "high", "title": "Bomba"}, res.Merged)
}

func TestResolveWorkOrderConflict_ClienteObsoleto(t *testing.T) {
	snap := conflict.Snapshot{ID: "wo-1", Version: 5, Payload: map[string]any{"priority": "low"}}
	change := conflict.Change{ID: "wo-1", Version: 3, Payload: map[string]any{"priority": "high"}}

	res := conflict.ResolveWorkOrderConflict(snap, change)
	assert.False(t, res.ApplyChange)
	assert.Equal(t, []string{"priority"}, res.Conflicts)
	assert.Equal(t, "high", res.Merged["priority"], "el merge conserva el valor del cliente")
}

// Obsoleto pero sin diferencias: se puede aplicar.
func TestResolveWorkOrderConflict_ObsoletoSinDiferencias(t *testing.T) {
	snap := conflict.Snapshot{Version: 5, Payload: map[string]any{"priority": "low"}}
	change := conflict.Change{Version: 1, Payload: map[string]any{"priority": "low"}}

	res := conflict.ResolveWorkOrderConflict(snap, change)
	assert.True(t, res.ApplyChange)
	assert.Empty(t, res.Conflicts)
}

func TestResolveWorkOrderConflict_Determinista(t *testing.T) {
	snap := conflict.Snapshot{Version: 9, Payload: map[string]any{"a": 1, "b": 2, "c": 3, "d": 4}}
	change := conflict.Change{Version: 2, Payload: map[string]any{"d": 0, "c": 0, "b": 0, "a": 0}}

	first := conflict.ResolveWorkOrderConflict(snap, change)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, conflict.ResolveWorkOrderConflict(snap, change))
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, first.Conflicts)
}

func TestResolveByTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	snap := conflict.Snapshot{UpdatedAt: now, Payload: map[string]any{"title": "A"}}

	stale := conflict.ResolveByTimestamp(snap, conflict.Change{ClientUpdatedAt: now.Add(-time.Minute), Payload: map[string]any{"title": "B"}})
	assert.False(t, stale.ApplyChange)
	assert.Equal(t, []string{"title"}, stale.Conflicts)

	fresh := conflict.ResolveByTimestamp(snap, conflict.Change{ClientUpdatedAt: now, Payload: map[string]any{"title": "B"}})
	assert.True(t, fresh.ApplyChange)
	assert.Equal(t, "B", fresh.Merged["title"])
}
