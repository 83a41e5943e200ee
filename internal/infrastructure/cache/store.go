// Package cache provides the read cache the sync orchestrator consults
// before calling out to a channel. Only idempotent reads (product and order
// listings) are cached; writes always go to the channel. Keys are
// namespaced per integration so one seller's entries never leak into
// another's.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is the cache port. Values are opaque bytes; callers marshal their
// own payloads. A miss is (nil, false, nil), never an error.
type Store interface {
	// Get returns the value for key, or found=false on miss or expiry
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// Clear removes every key in the store's namespace
	Clear(ctx context.Context) error

	// Close releases background resources
	Close() error
}

// Key builds the namespaced cache key for one integration operation.
func Key(integrationID, operation string, parts ...string) string {
	key := fmt.Sprintf("sync:%s:%s", integrationID, operation)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
