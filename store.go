package joblens

import "context"

// KeyValueStore is asynchronous key/value persistence scoped to the current
// browsing session or longer. The engine uses it, when configured, to carry
// content and result caches across reloads. All engine usage is best-effort:
// store failures degrade to in-memory caching only.
type KeyValueStore interface {
	// Get returns the value for key. Returns ENOTFOUND if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
