package domain

// Scope es el contexto de aislamiento que entrega el middleware de autenticación.
// SiteID vacío significa "todas las sedes del tenant".
type Scope struct {
	TenantID string
	SiteID   string
	UserID   string
}

// Allows indica si un recurso (tenant, sede) está dentro del alcance.
func (s Scope) Allows(tenantID, siteID string) bool {
	if s.TenantID == "" || s.TenantID != tenantID {
		return false
	}
	return s.SiteID == "" || s.SiteID == siteID
}

// Valid exige al menos tenant y usuario.
func (s Scope) Valid() bool {
	return s.TenantID != "" && s.UserID != ""
}
