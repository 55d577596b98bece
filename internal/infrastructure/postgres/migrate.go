package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Migrate aplica los scripts de schema/ en orden de nombre. Los scripts son
// idempotentes (IF NOT EXISTS). Devuelve los nombres aplicados.
func Migrate(ctx context.Context, q Querier) ([]string, error) {
	names, err := fs.Glob(schemaFiles, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		// Sin argumentos pgx usa el protocolo simple, que admite varias sentencias.
		if _, err := q.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("aplicar %s: %w", name, err)
		}
	}
	return names, nil
}
