package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes updates to one report session across
// replicas that share a store. session.Manager takes it after its local
// mutex, keyed by session ID.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock lapses after
	// ttl if the holder never unlocks. The caller must call the returned
	// UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
