package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mantenimiento-api",
		Short: "API de órdenes de trabajo de mantenimiento",
		Long: `Servicio de órdenes de trabajo de mantenimiento multi-tenant: ciclo de vida,
compuerta de seguridad (permisos y LOTO), monitor SLA y libro de repuestos.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(slaSweepCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
