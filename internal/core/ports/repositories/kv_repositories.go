package repositories

import "context"

// KVStore is the small persistence port for view-state that outlives a
// session, such as the freelancer's done-milestone overrides. Last write
// wins; no transactional guarantee is assumed.
type KVStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error
}
