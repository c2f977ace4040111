package driven

import "context"

// ResponseCache stores distilled answers keyed by query and chunk fingerprint.
// Entries older than the cache TTL are treated as absent and evicted on lookup.
// Implementations must be safe for concurrent use.
type ResponseCache interface {
	// Get returns the cached response for key if present and not expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores a response for key, replacing any previous entry.
	Put(ctx context.Context, key, response string) error

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Len returns the number of stored entries, including expired ones
	// that have not been evicted yet.
	Len(ctx context.Context) (int, error)
}
