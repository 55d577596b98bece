package entity

// SlaPolicy tiempos objetivo y reglas de escalamiento por prioridad.
type SlaPolicy struct {
	Priority        string          `json:"priority" yaml:"priority"`
	ResponseMinutes int             `json:"response_minutes" yaml:"response_minutes"`
	ResolveMinutes  int             `json:"resolve_minutes" yaml:"resolve_minutes"`
	Escalations     []SlaEscalation `json:"escalations" yaml:"escalations"`
}
