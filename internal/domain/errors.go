package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrScopeViolation    = errors.New("referencia fuera del tenant o sede")
	ErrVersionConflict   = errors.New("el documento fue modificado por otra operación")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverIssue         = errors.New("la cantidad excede lo reservado pendiente")
	ErrOverReturn        = errors.New("la cantidad excede lo despachado pendiente de devolución")

	// Bloqueos de transición (409).
	ErrPermitsRequired   = errors.New("permisos de trabajo pendientes")
	ErrLotoIncomplete    = errors.New("bloqueo/etiquetado (LOTO) sin verificar")
	ErrApprovalPending   = errors.New("aprobación pendiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrNoPendingApproval = errors.New("no hay paso de aprobación pendiente")
)

// BlockedError describe una transición rechazada por una precondición.
// Envuelve uno de los errores de bloqueo para que errors.Is siga funcionando.
type BlockedError struct {
	Err     error
	Reason  string
	Missing []string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *BlockedError) Unwrap() error { return e.Err }

// NewBlockedError construye el error con un mensaje legible; missing se lista al final.
func NewBlockedError(err error, reason string, missing ...string) *BlockedError {
	msg := reason
	if len(missing) > 0 {
		msg = reason + ": " + strings.Join(missing, ", ")
	}
	return &BlockedError{Err: err, Reason: msg, Missing: missing}
}
