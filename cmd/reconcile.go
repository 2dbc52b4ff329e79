package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"collection-reconciler/core/logger"
	"collection-reconciler/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrDifferencesFound is returned by the reconcile command with --fail-on-diff.
var ErrDifferencesFound = errors.New("differences found")

var (
	reconcileCollections []string
	reconcileFormat      string
	reconcileArchive     bool
	reconcileFailOnDiff  bool
)

// reconcileCmd compares the configured collections once and exits.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare collections between the source and target databases",
	Long: `Reconcile the configured collections and report documents missing on either
side and field-level differences on documents present on both.

Examples:
  # Reconcile every configured collection, JSON report on stdout
  reconcile

  # Only some collections, as YAML
  reconcile --collection users --collection orders --format yaml

  # Archive reports to object storage and fail when anything differs
  reconcile --archive --fail-on-diff`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileCollections, "collection", nil, "Collection to reconcile (repeatable, default: all configured)")
	reconcileCmd.Flags().StringVar(&reconcileFormat, "format", "", "Report format on stdout: json, yaml or none (overrides output.format)")
	reconcileCmd.Flags().BoolVar(&reconcileArchive, "archive", false, "Upload each report to object storage")
	reconcileCmd.Flags().BoolVar(&reconcileFailOnDiff, "fail-on-diff", false, "Exit non-zero when any difference is found")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reconcileFormat != "" {
		cfg.Output.Format = reconcileFormat
	}
	if reconcileArchive {
		cfg.Output.Archive = true
	}
	if reconcileFailOnDiff {
		cfg.Output.FailOnDiff = true
	}

	// Logs go to stderr so the stdout report stays parseable.
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	specs, err := cfg.SelectSpecs(reconcileCollections)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		l.Warn("No collections configured, nothing to do")
		return nil
	}

	out, err := buildSink(ctx, cfg, cmd.OutOrStdout(), l)
	if err != nil {
		return err
	}

	src, tgt, err := openFetchers(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFetchers(src, tgt); err != nil {
			l.Warn("Failed to close connections", zap.Error(err))
		}
	}()

	engine := reconcile.NewEngine(src, tgt, l, reconcile.EngineOptions{
		Concurrency: cfg.Reconcile.Concurrency,
		Sink:        out,
	})

	l.Info("Starting reconciliation",
		zap.String("source", src.Name()),
		zap.String("target", tgt.Name()),
		zap.Int("collections", len(specs)),
	)

	results, err := engine.ReconcileAll(ctx, specs)
	if err != nil {
		return err
	}

	return checkResults(l, results, cfg.Output.FailOnDiff)
}

// checkResults logs the run totals and applies --fail-on-diff.
func checkResults(l *zap.Logger, results []*reconcile.Result, failOnDiff bool) error {
	var differing []string
	for _, r := range results {
		if r.HasDifferences() {
			differing = append(differing, r.Collection)
		}
	}

	l.Info("Reconciliation finished",
		zap.Int("collections", len(results)),
		zap.Int("with_differences", len(differing)),
	)

	if failOnDiff && len(differing) > 0 {
		return fmt.Errorf("%w in %d collection(s): %v", ErrDifferencesFound, len(differing), differing)
	}
	return nil
}
