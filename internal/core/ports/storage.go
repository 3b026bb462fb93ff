package ports

import "context"

// KeyValueStorage is the durable client-side storage sessions are kept in.
type KeyValueStorage interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
