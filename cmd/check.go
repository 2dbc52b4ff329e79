package cmd

import (
	"context"
	"fmt"
	"time"

	"collection-reconciler/core/logger"
	"collection-reconciler/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCmd validates the configuration and verifies both databases respond.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and test database connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		src, tgt, err := openFetchers(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFetchers(src, tgt)

		engine := reconcile.NewEngine(src, tgt, l, reconcile.EngineOptions{})
		if err := engine.Ping(ctx); err != nil {
			return err
		}

		l.Info("Configuration OK",
			zap.String("source", src.Name()),
			zap.String("target", tgt.Name()),
			zap.Int("collections", len(cfg.Collections)),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
