package locks

import (
	"context"
	"errors"
	"time"
)

// Locker hands out short-lived exclusive leases keyed by name.
type Locker interface {
	// Acquire returns ErrNotAcquired when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

var ErrNotAcquired = errors.New("lock held by another owner")
