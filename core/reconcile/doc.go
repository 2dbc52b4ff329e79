// Package reconcile compares the documents of a collection held in two
// databases and reports how they diverge.
//
// # Architecture
//
// The reconcile system consists of four stages:
//
// 1. Match: keys both sides by an identity field and partitions identities
// into source-only, target-only and common sets, after stripping excluded
// fields.
//
// 2. Diff: computes a path-addressed structural difference between the source
// and target document of every common identity.
//
// 3. Build: assembles the per-collection Result and checks it for internal
// consistency.
//
// 4. Engine: drives the stages for many collections. It fetches both sides
// concurrently through Fetcher implementations, bounds collection-level
// concurrency, and hands each Result to a Sink.
//
// A SnapshotCache can sit in front of the fetchers so repeated requests for
// the same collection reuse one fetch within a TTL.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(sourceFetcher, targetFetcher, logger, reconcile.EngineOptions{
//	    Concurrency: 4,
//	    Sink:        sink.NewLogSink(logger),
//	})
//
//	results, err := engine.ReconcileAll(ctx, []reconcile.CollectionSpec{
//	    {Name: "users", ExcludeFields: []string{"updated_at"}},
//	})
package reconcile
