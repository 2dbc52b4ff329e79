package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collection-reconciler/core/loader"
	"collection-reconciler/core/logger"
	"collection-reconciler/core/middleware/auth"
	"collection-reconciler/core/middleware/rayid"
	"collection-reconciler/core/reconcile"
	"collection-reconciler/feature/reconciliation"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation API server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to both databases
		ctx := context.Background()
		src, tgt, err := openFetchers(ctx, cfg)
		if err != nil {
			logg.Fatal("Failed to connect to databases", zap.Error(err))
		}
		logg = logg.With(zap.String("source", src.Name()), zap.String("target", tgt.Name()))
		logg.Info("Connected to source and target databases")

		// 4. Build the engine. The HTTP response carries the full report, so
		// only the log and the optional archive receive results.
		cfg.Output.Format = "none"
		out, err := buildSink(ctx, cfg, nil, logg)
		if err != nil {
			logg.Fatal("Failed to initialize report sinks", zap.Error(err))
		}

		var cache *reconcile.SnapshotCache
		if cfg.Reconcile.CacheTTLSeconds > 0 {
			cache = reconcile.NewSnapshotCache(time.Duration(cfg.Reconcile.CacheTTLSeconds) * time.Second)
		}
		engine := reconcile.NewEngine(src, tgt, logg, reconcile.EngineOptions{
			Concurrency: cfg.Reconcile.Concurrency,
			Sink:        out,
			Cache:       cache,
		})

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(reconciliation.NewFeature(engine, cfg.CollectionSpecs(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray ID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth, with the health probe left public
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Public: []string{"/health"}}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := closeFetchers(src, tgt); err != nil {
			logg.Warn("Failed to close connections", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
