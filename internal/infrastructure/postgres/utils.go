package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// wrapInsert traduce el duplicado a domain.ErrDuplicate.
func wrapInsert(what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
