package sink

import (
	"context"

	"collection-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// DefaultMaxDetails bounds how many differing identities are logged individually.
const DefaultMaxDetails = 5

// LogSink logs a summary of each result.
type LogSink struct {
	logger     *zap.Logger
	maxDetails int
}

// NewLogSink creates a log sink that details up to DefaultMaxDetails differences.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger, maxDetails: DefaultMaxDetails}
}

// Emit logs the counts and the first few differing identities.
func (s *LogSink) Emit(ctx context.Context, result *reconcile.Result) error {
	l := s.logger.With(zap.String("collection", result.Collection))

	l.Info("Comparison results",
		zap.Int("missing_in_source", len(result.MissingInSource)),
		zap.Int("missing_in_target", len(result.MissingInTarget)),
		zap.Int("common", result.CommonCount),
		zap.Int("content_differences", len(result.ContentDifferences)),
		zap.Int64("duration_ms", result.DurationMS),
	)

	for i, entry := range result.ContentDifferences {
		if i >= s.maxDetails {
			l.Info("Additional differences not shown", zap.Int("count", len(result.ContentDifferences)-s.maxDetails))
			break
		}
		l.Debug("Content difference",
			zap.String("identity", entry.Identity),
			zap.Strings("paths", entry.Diff.Paths()),
		)
	}

	return nil
}
