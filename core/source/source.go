package source

import (
	"context"
	"fmt"

	"collection-reconciler/core/reconcile"
)

// Open connects to the database described by cfg and returns its Fetcher.
func Open(ctx context.Context, cfg Config) (reconcile.Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverMongoDB:
		return OpenMongo(ctx, cfg)
	case DriverMySQL, DriverPostgres:
		return OpenSQL(cfg)
	case DriverDynamoDB:
		return OpenDynamoDB(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
