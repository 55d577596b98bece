package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/application/parts"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/natsnotify"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// backend repositorios de la persistencia elegida en STORE_DRIVER.
type backend struct {
	workOrders repository.WorkOrderRepository
	stocks     repository.PartStockRepository
	lineItems  repository.PartLineItemRepository
	movements  repository.InventoryMovementRepository
	templates  repository.TemplateRepository
	jobLock    repository.JobLock
	txRunner   parts.TxRunner
	close      func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			workOrders: store.WorkOrders(),
			stocks:     store.Stocks(),
			lineItems:  store.LineItems(),
			movements:  store.Movements(),
			templates:  store.Templates(),
			jobLock:    store.JobLock(),
			txRunner:   memory.NewTxRunner(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &backend{
		workOrders: postgres.NewWorkOrderRepository(pool),
		stocks:     postgres.NewPartStockRepository(pool),
		lineItems:  postgres.NewPartLineItemRepository(pool),
		movements:  postgres.NewInventoryMovementRepository(pool),
		templates:  postgres.NewTemplateRepository(pool),
		jobLock:    postgres.NewJobLock(pool),
		txRunner:   postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}

// openNotifier publica en NATS si NATS_URL está definido; si no, solo registra en el log.
// El cierre devuelto drena la conexión.
func openNotifier(cfg *config.Config, log *logger.Logger) (notify.Notifier, func(), error) {
	if cfg.NATS.URL == "" {
		return notify.NewLogNotifier(log.Named("notify")), func() {}, nil
	}
	nc, err := natsnotify.Connect(cfg.NATS.URL, cfg.App.Name)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("url", cfg.NATS.URL).Str("prefix", cfg.NATS.SubjectPrefix).Msg("notificaciones vía NATS")
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("drenar conexión NATS")
		}
	}
	return natsnotify.NewPublisher(nc, cfg.NATS.SubjectPrefix, log.Named("nats")), closeFn, nil
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}
