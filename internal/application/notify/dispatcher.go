// Package notify entrega las notificaciones producidas por las operaciones del dominio.
// La entrega es de mejor esfuerzo: los errores se registran y nunca llegan al caller.
package notify

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Notifier colaborador notifyUser(userId, message, meta).
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

// Dispatcher aísla fallas de entrega: una notificación fallida no impide las demás.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
}

// NewDispatcher construye el despachador.
func NewDispatcher(notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log}
}

// Dispatch entrega las notificaciones en orden y devuelve cuántas se entregaron.
func (d *Dispatcher) Dispatch(ctx context.Context, notes []entity.Notification) int {
	delivered := 0
	for _, n := range notes {
		if n.UserID == "" {
			continue
		}
		if err := d.deliver(ctx, n); err != nil {
			d.log.Warn().Err(err).Str("user_id", n.UserID).Msg("notificación no entregada")
			continue
		}
		delivered++
	}
	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, n entity.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, n)
}

// LogNotifier solo registra la notificación; se usa cuando no hay broker configurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra la notificación.
func (n *LogNotifier) Notify(_ context.Context, note entity.Notification) error {
	n.log.Info().Str("user_id", note.UserID).Interface("meta", note.Meta).Msg(note.Message)
	return nil
}
