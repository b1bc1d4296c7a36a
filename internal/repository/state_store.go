package repository

import (
	"context"
	"time"
)

// StateStore abstracts small key-value control state shared by every
// instance: the global pause flag, capability bindings for collaborating
// services, tier policy overrides, and the side-channel event stream.
// Implementations: Redis (production) or in-memory (local dev, tests).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Push appends value to the stream stored at key.
	Push(ctx context.Context, key string, value []byte) error
}
