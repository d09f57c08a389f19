package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled, optionally with
// the response that was produced for them.
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false when the key was already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete stores the result produced for a claimed key
	Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error
	// Result returns the stored result, or nil when the key is unknown or still in flight
	Result(ctx context.Context, key string) ([]byte, error)
	// Release drops a claim so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}
