package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"collection-reconciler/core/config"
	"collection-reconciler/core/reconcile"
	"collection-reconciler/core/sink"
	"collection-reconciler/core/source"
	"collection-reconciler/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loadConfig loads and validates the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadConfigFile(configFile)
	} else {
		cfg, err = config.LoadConfig(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openFetchers connects to both databases concurrently.
func openFetchers(ctx context.Context, cfg *config.Config) (reconcile.Fetcher, reconcile.Fetcher, error) {
	var src, tgt reconcile.Fetcher
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := source.Open(gctx, cfg.Source)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		src = f
		return nil
	})
	g.Go(func() error {
		f, err := source.Open(gctx, cfg.Target)
		if err != nil {
			return fmt.Errorf("failed to open target: %w", err)
		}
		tgt = f
		return nil
	})
	if err := g.Wait(); err != nil {
		closeFetchers(src, tgt)
		return nil, nil, err
	}
	return src, tgt, nil
}

// closeFetchers closes every non-nil fetcher with a short deadline.
func closeFetchers(fetchers ...reconcile.Fetcher) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		if err := f.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", f.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// buildSink assembles the log sink, the stdout report and the optional
// storage archive.
func buildSink(ctx context.Context, cfg *config.Config, out io.Writer, l *zap.Logger) (reconcile.Sink, error) {
	sinks := sink.Multi{sink.NewLogSink(l)}

	format, err := sink.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if format != sink.FormatNone {
		w, err := sink.NewWriterSink(out, format)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}

	if cfg.Output.Archive {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewObjectSink(client, cfg.Storage.Bucket, cfg.Output.ArchivePrefix))
		l.Info("Archiving reports", zap.String("bucket", cfg.Storage.Bucket), zap.String("prefix", cfg.Output.ArchivePrefix))
	}

	return sinks, nil
}
