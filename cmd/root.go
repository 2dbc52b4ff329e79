package cmd

import (
	"fmt"
	"os"

	"collection-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "collection-reconciler",
	Short: "Cross-database collection reconciler",
	Long: `Collection Reconciler compares collections between a source and a target
database and reports missing documents and field-level differences.
It supports MongoDB, MySQL, PostgreSQL and DynamoDB on either side.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps, matching the CLI output.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml)")
}
