package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates replicas that share a hint store, so that a
// read-modify-write of one document's hints is not lost to a concurrent save.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx ends. The lock
	// expires after ttl if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
