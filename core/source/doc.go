// Package source implements reconcile.Fetcher for each supported database.
//
// # Drivers
//
//   - mongodb: official mongo-driver v2. Exclusions become a server-side
//     projection; ObjectIds become document.OpaqueID.
//   - mysql, postgres: GORM over core/database. Columns are listed first so
//     excluded columns are never selected.
//   - dynamodb: aws-sdk-go-v2 scan paginator. Sets become document.Set.
//
// Every driver returns values already normalized into the document model,
// so the reconcile engine never sees driver-native types.
//
// # Usage
//
//	fetcher, err := source.Open(ctx, cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer fetcher.Close(ctx)
package source
