package contracts

import "errors"

var (
	// ErrDataUnavailable signals that a backing store or market data
	// provider was unreachable or returned nothing. Recovered locally:
	// callers log it and continue with whatever data they have.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrCacheCorrupt signals that a persisted cache entry failed to
	// parse or is missing required fields. Treated as cache-absent.
	ErrCacheCorrupt = errors.New("cache entry corrupt")
)
