package reconcile

import (
	"context"

	"collection-reconciler/core/document"
)

// Fetcher loads the documents of a collection from one database.
// Each driver in core/source implements it.
type Fetcher interface {
	// Name returns the driver name (e.g., "mongodb", "mysql").
	Name() string

	// Fetch returns every document of the named collection with the excluded
	// fields already removed. Implementations push the exclusion down to the
	// database where the driver allows it.
	Fetch(ctx context.Context, collection string, exclude document.ExclusionSet) ([]document.Document, error)

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Sink receives each finished collection result.
// Emit may be called concurrently for different collections.
type Sink interface {
	Emit(ctx context.Context, result *Result) error
}
