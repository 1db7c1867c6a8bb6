package monitor

import (
	"context"
	"time"
)

// Fetcher retrieves the raw content of a URL. Implementations must honor the
// timeout carried by the FetchConfig and fail closed past it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cfg FetchConfig) (FetchResult, error)
}

// Hasher computes digests for snapshot comparison/integrity.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces check-record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
