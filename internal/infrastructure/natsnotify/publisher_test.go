package natsnotify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/natsnotify"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestNotify_PublicaPorTipo(t *testing.T) {
	conn := &fakeConn{}
	p := natsnotify.NewPublisher(conn, "maintenance.notifications", logger.Nop())

	err := p.Notify(context.Background(), entity.Notification{
		UserID:  "mgr-1",
		Message: "SLA escalation",
		Meta:    map[string]any{"type": "sla_escalation", "work_order_id": "wo-1", "tenant_id": "t-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "maintenance.notifications.sla_escalation", conn.subject)

	var ev natsnotify.Event
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, "mgr-1", ev.UserID)
	assert.Equal(t, "wo-1", ev.WorkOrderID)
	assert.Equal(t, "t-1", ev.TenantID)
}

func TestNotify_SinTipoYErrorDePublicacion(t *testing.T) {
	conn := &fakeConn{err: errors.New("desconectado")}
	p := natsnotify.NewPublisher(conn, "mnt", logger.Nop())

	err := p.Notify(context.Background(), entity.Notification{UserID: "u-1", Message: "hola"})
	assert.Error(t, err)
	assert.Equal(t, "mnt.general", conn.subject)
}
