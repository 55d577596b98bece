// Package slapolicy carga las políticas SLA por prioridad desde un archivo YAML.
//
//	policies:
//	  - priority: critical
//	    response_minutes: 10
//	    resolve_minutes: 120
//	    escalations:
//	      - trigger: response
//	        threshold_minutes: 5
//	        escalate_to: [supervisor-1]
//	        priority: critical
package slapolicy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/sla"
)

type file struct {
	Policies []entity.SlaPolicy `yaml:"policies"`
}

// Load lee el archivo y combina sus políticas sobre las de sla.DefaultPolicies.
// Sin ruta devuelve las políticas por defecto.
func Load(path string) (sla.PolicySet, error) {
	if path == "" {
		return sla.DefaultPolicies(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer políticas SLA: %w", err)
	}
	return Parse(raw)
}

// Parse decodifica el YAML; campos desconocidos son error.
func Parse(raw []byte) (sla.PolicySet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decodificar políticas SLA: %w", err)
	}

	set := sla.DefaultPolicies()
	for _, p := range f.Policies {
		if err := validate(p); err != nil {
			return nil, err
		}
		set[p.Priority] = p
	}
	return set, nil
}

func validate(p entity.SlaPolicy) error {
	if !entity.IsValidPriority(p.Priority) {
		return fmt.Errorf("política SLA: prioridad desconocida %q", p.Priority)
	}
	if p.ResponseMinutes < 0 || p.ResolveMinutes < 0 {
		return fmt.Errorf("política SLA %s: minutos negativos", p.Priority)
	}
	for i, e := range p.Escalations {
		if e.Trigger != entity.SlaTriggerResponse && e.Trigger != entity.SlaTriggerResolve {
			return fmt.Errorf("política SLA %s: regla %d con trigger %q", p.Priority, i, e.Trigger)
		}
		if e.ThresholdMinutes < 0 {
			return fmt.Errorf("política SLA %s: regla %d con umbral negativo", p.Priority, i)
		}
		if e.Priority != "" && !entity.IsValidPriority(e.Priority) {
			return fmt.Errorf("política SLA %s: regla %d con prioridad %q", p.Priority, i, e.Priority)
		}
	}
	return nil
}
