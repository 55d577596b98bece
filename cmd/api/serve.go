package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/application/parts"
	"github.com/jhoicas/Mantenimiento-api/internal/application/sla"
	"github.com/jhoicas/Mantenimiento-api/internal/application/templates"
	"github.com/jhoicas/Mantenimiento-api/internal/application/workorder"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/slapolicy"
	httpRouter "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
)

func serveCmd() *cobra.Command {
	var noMonitor bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP y el monitor SLA",
		Long: `Levanta la API HTTP y, en el mismo proceso, el monitor SLA periódico.
Varias instancias pueden correr a la vez: el candado con TTL evita barridos dobles.

Ejemplos:
  mantenimiento-api serve
  STORE_DRIVER=memory mantenimiento-api serve --no-monitor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), noMonitor)
		},
	}
	cmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "no iniciar el monitor SLA en este proceso")
	return cmd
}

func runServe(parent context.Context, noMonitor bool) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	policies, err := slapolicy.Load(cfg.SLA.PolicyFile)
	if err != nil {
		return err
	}
	notifier, closeNotifier, err := openNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()
	dispatcher := notify.NewDispatcher(notifier, log.Named("notify"))

	lifecycleUC := workorder.NewLifecycleUseCase(be.workOrders, be.templates, policies, dispatcher, log.Named("workorder"))
	ledgerUC := parts.NewLedgerUseCase(be.txRunner, be.workOrders, be.stocks, be.lineItems, be.movements, parts.Options{
		ReleaseOnReturn: cfg.Parts.ReturnReleasesReservation,
	})
	templateUC := templates.NewTemplateUseCase(be.templates)

	app := newApp(cfg)
	httpRouter.Router(app, httpRouter.RouterDeps{
		LifecycleUC: lifecycleUC,
		LedgerUC:    ledgerUC,
		TemplateUC:  templateUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if !noMonitor {
		monitor := sla.NewMonitor(monitorConfig(cfg), be.workOrders, be.jobLock, dispatcher, log.Named("sla"))
		g.Go(func() error {
			return monitor.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor finalizado con error")
		return err
	}
	log.Info().Msg("aplicación detenida")
	return nil
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Mantenimiento API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	return app
}

func monitorConfig(cfg *config.Config) sla.Config {
	return sla.Config{
		Interval:  cfg.SLA.SweepInterval,
		Lookahead: cfg.SLA.Lookahead,
		LockTTL:   cfg.SLA.LockTTL,
		LockName:  cfg.SLA.LockName,
	}
}
