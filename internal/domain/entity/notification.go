package entity

// Notification mensaje para notifyUser. Las operaciones de dominio las devuelven
// como salida y un despachador separado se encarga de entregarlas.
type Notification struct {
	UserID  string
	Message string
	Meta    map[string]any
}
