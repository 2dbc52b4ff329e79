// Package reconciliation exposes the reconcile engine over HTTP.
//
// # Routes
//
//   - GET  /health: pings both databases
//   - GET  /collections: lists configured collections
//   - GET  /reconcile/:collection: reconciles one collection (?refresh=true
//     drops the cached snapshot first)
//   - POST /reconcile: reconciles the collections named in the body, or all
package reconciliation
