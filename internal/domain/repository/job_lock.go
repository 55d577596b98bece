package repository

import (
	"context"
	"time"
)

// JobLock candado distribuido con nombre y TTL. No es reentrante: un segundo
// Acquire sobre un nombre vigente devuelve false aunque venga del mismo holder.
type JobLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
}
