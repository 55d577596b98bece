package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/application/sla"
)

func slaSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sla-sweep",
		Short: "Ejecuta un único barrido SLA y termina",
		Long: `Ejecuta un barrido SLA (recordatorios y escalamientos) y muestra el resumen.
Pensado para cron; respeta el mismo candado que el monitor de "serve".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			be, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer be.close()

			notifier, closeNotifier, err := openNotifier(cfg, log)
			if err != nil {
				return err
			}
			defer closeNotifier()

			monitor := sla.NewMonitor(monitorConfig(cfg), be.workOrders, be.jobLock,
				notify.NewDispatcher(notifier, log.Named("notify")), log.Named("sla"))
			report, err := monitor.Tick(ctx)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
}

func printReport(r sla.SweepReport) {
	if r.Skipped {
		fmt.Printf("%s candado tomado por otro proceso, barrido omitido\n", color.New(color.FgYellow).Sprint("!"))
		return
	}
	fmt.Printf("%s barrido SLA %s\n", color.New(color.FgGreen).Sprint("✓"), r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  próximos a vencer: %d\n", r.Upcoming)
	fmt.Printf("  vencidos:          %d\n", r.Breached)
	fmt.Printf("  escalamientos:     %d\n", r.Escalated)
	fmt.Printf("  notificaciones:    %d\n", r.Notified)
	failed := fmt.Sprint(r.Failed)
	if r.Failed > 0 {
		failed = color.New(color.FgRed).Sprint(r.Failed)
	}
	fmt.Printf("  con error:         %s\n", failed)
}
