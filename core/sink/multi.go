package sink

import (
	"context"

	"collection-reconciler/core/reconcile"
)

// Multi emits to each sink in order and stops at the first error.
type Multi []reconcile.Sink

// Emit forwards the result to every sink.
func (m Multi) Emit(ctx context.Context, result *reconcile.Result) error {
	for _, s := range m {
		if err := s.Emit(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
