package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema de PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != "postgres" {
				return errors.New("migrate requiere STORE_DRIVER=postgres")
			}
			ctx := cmd.Context()

			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("APLICADA"), name)
			}
			log.Info().Int("scripts", len(applied)).Msg("migraciones aplicadas")
			return nil
		},
	}
}
