package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.JobLock = (*JobLock)(nil)

// JobLock candado con TTL compartido entre réplicas mediante la tabla job_locks.
type JobLock struct {
	q Querier
}

// NewJobLock construye el candado sobre el pool.
func NewJobLock(q Querier) *JobLock {
	return &JobLock{q: q}
}

// Acquire inserta el candado o lo toma si el anterior ya venció. El reloj es el de la base.
func (l *JobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO job_locks (name, expires_at)
		VALUES ($1, now() + make_interval(secs => $2))
		ON CONFLICT (name) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE job_locks.expires_at <= now()`
	cmd, err := l.q.Exec(ctx, query, name, ttl.Seconds())
	if err != nil {
		return false, fmt.Errorf("acquire job lock %s: %w", name, err)
	}
	return cmd.RowsAffected() == 1, nil
}
