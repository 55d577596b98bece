// Package natsnotify publica las notificaciones de órdenes de trabajo en NATS
// para que el servicio de notificaciones las entregue.
//
// Subject: <prefix>.<tipo>, ej. maintenance.notifications.sla_escalation.
package natsnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

var _ notify.Notifier = (*Publisher)(nil)

// Conn lo que el publisher usa de *nats.Conn.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event esquema JSON publicado.
type Event struct {
	EventType   string         `json:"event_type"`
	UserID      string         `json:"user_id"`
	TenantID    string         `json:"tenant_id,omitempty"`
	WorkOrderID string         `json:"work_order_id,omitempty"`
	Message     string         `json:"message"`
	Meta        map[string]any `json:"meta,omitempty"`
	SentAt      time.Time      `json:"sent_at"`
}

// Publisher implementa notify.Notifier sobre NATS core.
type Publisher struct {
	conn   Conn
	prefix string
	log    *logger.Logger
}

// NewPublisher crea un publisher sobre una conexión existente.
func NewPublisher(conn Conn, prefix string, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, prefix: prefix, log: log}
}

// Connect abre la conexión a NATS con reconexión indefinida.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar a NATS %s: %w", url, err)
	}
	return nc, nil
}

// Notify publica la notificación; el error lo registra el despachador.
func (p *Publisher) Notify(_ context.Context, n entity.Notification) error {
	eventType := metaString(n.Meta, "type")
	if eventType == "" {
		eventType = "general"
	}
	data, err := json.Marshal(Event{
		EventType:   eventType,
		UserID:      n.UserID,
		TenantID:    metaString(n.Meta, "tenant_id"),
		WorkOrderID: metaString(n.Meta, "work_order_id"),
		Message:     n.Message,
		Meta:        n.Meta,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notificación: %w", err)
	}
	subject := p.prefix + "." + eventType
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publicar en %s: %w", subject, err)
	}
	p.log.Debug().Str("subject", subject).Str("user_id", n.UserID).Msg("notificación publicada")
	return nil
}

func metaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}
