package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	httpRouter "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Mantenimiento-api/pkg/jwt"
)

func tokenCmd() *cobra.Command {
	var userID, tenantID, siteID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un Bearer Token firmado con JWT_SECRET",
		Long: `Emite un token para integraciones o pruebas manuales. La identidad la gestiona
un proveedor externo; este comando solo firma los claims indicados.

Ejemplos:
  mantenimiento-api token --user u-1 --tenant t-1 --site planta-norte --role tecnico
  mantenimiento-api token --user jefe --tenant t-1 --role supervisor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if userID == "" || tenantID == "" {
				return errors.New("--user y --tenant son obligatorios")
			}
			switch role {
			case httpRouter.RoleAdmin, httpRouter.RoleSupervisor, httpRouter.RoleTecnico:
			default:
				return fmt.Errorf("rol inválido %q", role)
			}
			tok, err := pkgjwt.Generate(cfg.JWT.Secret, userID, tenantID, siteID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "ID del tenant")
	cmd.Flags().StringVar(&siteID, "site", "", "sede; vacío = todas las del tenant")
	cmd.Flags().StringVar(&role, "role", httpRouter.RoleTecnico, "admin | supervisor | tecnico")
	return cmd
}
