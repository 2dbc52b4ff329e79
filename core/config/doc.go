// Package config provides configuration management for the reconciler.
//
// It uses Viper to load a config file (config.yaml, config.json, ...),
// environment variables and a .env file. Defaults come from the `default`
// struct tags of every section.
//
// # Configuration Structure
//
//   - Source, Target: the two databases (driver, host, credentials, db_name)
//   - Collections: the collections to reconcile and their exclusions
//   - Reconcile: default identity field, concurrency, snapshot cache TTL
//   - Output: report format, archival, exit behaviour
//   - Server: HTTP port and API key
//   - Storage: S3/MinIO settings for report archival
//   - Log: logging level and format
//
// The source_db and target_db keys are accepted in place of source and target.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
