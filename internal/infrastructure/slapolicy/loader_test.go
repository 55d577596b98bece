package slapolicy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/slapolicy"
)

const policiesYAML = `
policies:
  - priority: critical
    response_minutes: 10
    resolve_minutes: 120
    escalations:
      - trigger: response
        threshold_minutes: 5
        escalate_to: [sup-1, mgr-1]
        priority: critical
        reassign: tech-oncall
`

func TestParse_CombinaSobreDefaults(t *testing.T) {
	set, err := slapolicy.Parse([]byte(policiesYAML))
	require.NoError(t, err)

	crit := set[entity.PriorityCritical]
	assert.Equal(t, 10, crit.ResponseMinutes)
	require.Len(t, crit.Escalations, 1)
	assert.Equal(t, []string{"sup-1", "mgr-1"}, crit.Escalations[0].EscalateTo)
	assert.Equal(t, "tech-oncall", crit.Escalations[0].Reassign)
	assert.Equal(t, 240, set[entity.PriorityMedium].ResponseMinutes, "las demás prioridades conservan el default")
}

func TestParse_Errores(t *testing.T) {
	cases := map[string]string{
		"prioridad":     "policies:\n  - priority: urgent\n",
		"trigger":       "policies:\n  - priority: low\n    escalations:\n      - trigger: close\n",
		"campo extraño": "policies:\n  - priority: low\n    color: red\n",
	}
	for name, raw := range cases {
		_, err := slapolicy.Parse([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	set, err := slapolicy.Load("")
	require.NoError(t, err)
	assert.Len(t, set, 4)

	path := filepath.Join(t.TempDir(), "sla.yaml")
	require.NoError(t, os.WriteFile(path, []byte(policiesYAML), 0o600))
	set, err = slapolicy.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, set[entity.PriorityCritical].ResolveMinutes)

	_, err = slapolicy.Load(filepath.Join(t.TempDir(), "no-existe.yaml"))
	assert.Error(t, err)
}
