package reconcile

import (
	"context"
	"sync"
	"time"

	"collection-reconciler/core/document"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Concurrency bounds how many collections are reconciled at once.
	// Zero or less means one at a time.
	Concurrency int

	// Sink receives every finished result. Optional.
	Sink Sink

	// Cache reuses fetched snapshots between calls. Optional.
	Cache *SnapshotCache
}

// Engine reconciles collections between a source and a target database.
type Engine struct {
	source      Fetcher
	target      Fetcher
	logger      *zap.Logger
	sink        Sink
	cache       *SnapshotCache
	concurrency int
	now         func() time.Time
}

// NewEngine creates a new reconciliation engine.
func NewEngine(source, target Fetcher, logger *zap.Logger, opts EngineOptions) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Engine{
		source:      source,
		target:      target,
		logger:      logger,
		sink:        opts.Sink,
		cache:       opts.Cache,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ReconcileDocuments compares two in-memory document lists. It performs no
// I/O and does not emit to the sink.
func (e *Engine) ReconcileDocuments(spec CollectionSpec, source, target []document.Document) (*Result, error) {
	started := e.now()
	exclude := spec.Exclusions()

	match, err := Match(source, target, spec.Identity(), exclude)
	if err != nil {
		return nil, &CollectionError{Collection: spec.Name, Op: "match", Err: err}
	}

	opts := DiffOptions{IgnoreOrder: spec.IgnoreOrder}
	entries := make([]DiffEntry, 0)
	for _, id := range match.Common {
		sourceDoc := match.SourceIndex[id]
		targetDoc := match.TargetIndex[id]

		diff := Diff(sourceDoc, targetDoc, opts)
		if diff.IsEmpty() {
			continue
		}
		entries = append(entries, DiffEntry{
			Identity:  id,
			SourceDoc: sourceDoc,
			TargetDoc: targetDoc,
			Diff:      diff,
		})
	}

	result, err := Build(spec.Name, match, entries)
	if err != nil {
		return nil, &CollectionError{Collection: spec.Name, Op: "build", Err: err}
	}

	result.ExcludeFields = exclude.Fields()
	result.StartedAt = started
	result.DurationMS = e.now().Sub(started).Milliseconds()

	return result, nil
}

// ReconcileCollection fetches both sides of one collection, compares them and
// emits the result to the sink.
func (e *Engine) ReconcileCollection(ctx context.Context, spec CollectionSpec) (*Result, error) {
	return e.reconcile(ctx, spec, uuid.NewString())
}

// ReconcileAll reconciles every spec with bounded concurrency. Results are
// returned in the order of specs. The first failure cancels the remaining
// collections and is returned.
func (e *Engine) ReconcileAll(ctx context.Context, specs []CollectionSpec) ([]*Result, error) {
	runID := uuid.NewString()
	results := make([]*Result, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			res, err := e.reconcile(gctx, spec, runID)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("Reconciliation run finished",
		zap.String("run_id", runID),
		zap.Int("collections", len(specs)),
	)

	return results, nil
}

// Invalidate drops any cached snapshot for spec.
func (e *Engine) Invalidate(spec CollectionSpec) {
	if e.cache != nil {
		e.cache.Invalidate(spec)
	}
}

// Ping checks both databases.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.source.Ping(ctx); err != nil {
		return &CollectionError{Side: SideSource, Op: "ping", Err: err}
	}
	if err := e.target.Ping(ctx); err != nil {
		return &CollectionError{Side: SideTarget, Op: "ping", Err: err}
	}
	return nil
}

func (e *Engine) reconcile(ctx context.Context, spec CollectionSpec, runID string) (*Result, error) {
	l := e.logger.With(zap.String("collection", spec.Name), zap.String("run_id", runID))
	l.Debug("Reconciling collection")

	source, target, err := e.load(ctx, spec)
	if err != nil {
		return nil, err
	}

	result, err := e.ReconcileDocuments(spec, source, target)
	if err != nil {
		return nil, err
	}
	result.RunID = runID

	if result.Duplicates != nil {
		l.Warn("Duplicate identities found; last occurrence compared",
			zap.Strings("source", result.Duplicates.Source),
			zap.Strings("target", result.Duplicates.Target),
		)
	}

	if e.sink != nil {
		if err := e.sink.Emit(ctx, result); err != nil {
			return nil, &CollectionError{Collection: spec.Name, Op: "emit", Err: err}
		}
	}

	return result, nil
}

func (e *Engine) load(ctx context.Context, spec CollectionSpec) ([]document.Document, []document.Document, error) {
	if e.cache == nil {
		return e.fetchPair(ctx, spec)
	}
	snap, err := e.cache.Get(ctx, spec, func(ctx context.Context) ([]document.Document, []document.Document, error) {
		return e.fetchPair(ctx, spec)
	})
	if err != nil {
		return nil, nil, err
	}
	return snap.Source, snap.Target, nil
}

// fetchPair loads both sides concurrently.
func (e *Engine) fetchPair(ctx context.Context, spec CollectionSpec) ([]document.Document, []document.Document, error) {
	var (
		source    []document.Document
		target    []document.Document
		sourceErr error
		targetErr error
		wg        sync.WaitGroup
	)

	exclude := spec.Exclusions()
	wg.Add(2)

	go func() {
		defer wg.Done()
		source, sourceErr = e.source.Fetch(ctx, spec.Name, exclude)
	}()

	go func() {
		defer wg.Done()
		target, targetErr = e.target.Fetch(ctx, spec.Name, exclude)
	}()

	wg.Wait()

	if sourceErr != nil {
		return nil, nil, &CollectionError{Collection: spec.Name, Side: SideSource, Op: "fetch", Err: sourceErr}
	}
	if targetErr != nil {
		return nil, nil, &CollectionError{Collection: spec.Name, Side: SideTarget, Op: "fetch", Err: targetErr}
	}

	return source, target, nil
}
