// Package sla ejecuta el barrido periódico de vencimientos SLA: recordatorios
// de vencimientos próximos y escalamiento de incumplimientos.
package sla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	domainsla "github.com/jhoicas/Mantenimiento-api/internal/domain/sla"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Config parámetros del monitor; se pasan al construirlo, nunca por variables globales.
type Config struct {
	Interval  time.Duration
	Lookahead time.Duration
	LockTTL   time.Duration
	LockName  string
	// Clock reloj inyectable; nil = time.Now.
	Clock func() time.Time
}

// SweepReport resumen de un tick.
type SweepReport struct {
	StartedAt time.Time
	Skipped   bool // otro proceso tiene el candado de este tick
	Upcoming  int  // órdenes con vencimiento próximo
	Breached  int  // órdenes vencidas evaluadas
	Escalated int  // reglas disparadas
	Notified  int  // notificaciones entregadas
	Failed    int  // registros con error (no detienen el lote)
}

// Monitor barrido SLA coordinado por un candado con TTL entre procesos.
type Monitor struct {
	cfg        Config
	repo       repository.WorkOrderRepository
	lock       repository.JobLock
	dispatcher *notify.Dispatcher
	log        *logger.Logger
}

// NewMonitor construye el monitor.
func NewMonitor(cfg Config, repo repository.WorkOrderRepository, lock repository.JobLock, dispatcher *notify.Dispatcher, log *logger.Logger) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.LockName == "" {
		cfg.LockName = "sla-sweep"
	}
	return &Monitor{cfg: cfg, repo: repo, lock: lock, dispatcher: dispatcher, log: log}
}

// Start ejecuta un tick por intervalo hasta que ctx se cancela. Los errores de un
// tick se registran y el temporizador sigue.
func (m *Monitor) Start(ctx context.Context) error {
	if m.cfg.Interval <= 0 {
		return fmt.Errorf("sla monitor: intervalo inválido %s", m.cfg.Interval)
	}
	m.log.Info().Dur("interval", m.cfg.Interval).Dur("lookahead", m.cfg.Lookahead).Msg("monitor SLA iniciado")

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("monitor SLA detenido")
			return nil
		case <-ticker.C:
			report, err := m.Tick(ctx)
			if err != nil {
				m.log.Error().Err(err).Msg("barrido SLA fallido")
				continue
			}
			if !report.Skipped {
				m.log.Info().
					Int("upcoming", report.Upcoming).
					Int("breached", report.Breached).
					Int("escalated", report.Escalated).
					Int("notified", report.Notified).
					Int("failed", report.Failed).
					Msg("barrido SLA")
			}
		}
	}
}

// Tick ejecuta un barrido si este proceso obtiene el candado. Perder el candado
// no es error: otro proceso ya tiene este tick.
func (m *Monitor) Tick(ctx context.Context) (report SweepReport, err error) {
	now := m.cfg.Clock()
	report.StartedAt = now
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sla monitor: panic en barrido: %v", r)
		}
	}()

	acquired, err := m.lock.Acquire(ctx, m.cfg.LockName, m.cfg.LockTTL)
	if err != nil {
		return report, fmt.Errorf("sla monitor: candado: %w", err)
	}
	if !acquired {
		report.Skipped = true
		m.log.Debug().Str("lock", m.cfg.LockName).Msg("candado tomado por otro proceso, se omite el tick")
		return report, nil
	}

	if err := m.upcomingPass(ctx, now, &report); err != nil {
		m.log.Error().Err(err).Msg("pasada de vencimientos próximos fallida")
	}
	if err := m.breachPass(ctx, now, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (m *Monitor) upcomingPass(ctx context.Context, now time.Time, report *SweepReport) error {
	list, err := m.repo.ListSlaUpcoming(ctx, now, now.Add(m.cfg.Lookahead))
	if err != nil {
		return fmt.Errorf("sla monitor: listar próximos: %w", err)
	}
	report.Upcoming = len(list)
	for _, wo := range list {
		m.isolate(wo, report, func() error {
			report.Notified += m.dispatcher.Dispatch(ctx, domainsla.Reminders(wo, now, now.Add(m.cfg.Lookahead)))
			return nil
		})
	}
	return nil
}

func (m *Monitor) breachPass(ctx context.Context, now time.Time, report *SweepReport) error {
	list, err := m.repo.ListSlaBreached(ctx, now)
	if err != nil {
		return fmt.Errorf("sla monitor: listar vencidos: %w", err)
	}
	report.Breached = len(list)
	for _, wo := range list {
		m.isolate(wo, report, func() error {
			return m.escalate(ctx, wo, now, report)
		})
	}
	return nil
}

// escalate persiste antes de notificar.
func (m *Monitor) escalate(ctx context.Context, wo *entity.WorkOrder, now time.Time, report *SweepReport) error {
	expected := wo.Version
	fired, notes := domainsla.Escalate(wo, now)
	if fired == 0 {
		return nil
	}
	if err := m.repo.Update(ctx, wo, expected); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			m.log.Debug().Str("work_order_id", wo.ID).Msg("orden modificada durante el barrido, se reevalúa en el próximo tick")
			return nil
		}
		return err
	}
	report.Escalated += fired
	report.Notified += m.dispatcher.Dispatch(ctx, notes)
	return nil
}

// isolate evita que un registro con error o panic aborte el lote.
func (m *Monitor) isolate(wo *entity.WorkOrder, report *SweepReport, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			m.log.Error().Str("work_order_id", wo.ID).Interface("panic", r).Msg("registro SLA con panic")
		}
	}()
	if err := fn(); err != nil {
		report.Failed++
		m.log.Error().Err(err).Str("work_order_id", wo.ID).Msg("registro SLA con error")
	}
}
