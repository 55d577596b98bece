package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// JobLock candado con nombre y vencimiento, válido dentro de un solo proceso.
type JobLock struct {
	s *Store
}

var _ repository.JobLock = (*JobLock)(nil)

// Acquire toma el candado si no existe o ya venció.
func (l *JobLock) Acquire(_ context.Context, name string, ttl time.Duration) (acquired bool, err error) {
	l.s.view(false, func() {
		now := l.s.clock()
		if exp, ok := l.s.locks[name]; ok && now.Before(exp) {
			return
		}
		l.s.locks[name] = now.Add(ttl)
		acquired = true
	})
	return acquired, nil
}
