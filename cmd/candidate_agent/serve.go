package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/candidate-tracker/internal/artifacts"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/rendering"
	"github.com/jonathan/candidate-tracker/internal/server"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
	"github.com/jonathan/candidate-tracker/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for CV extraction and the candidate lifecycle.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := db.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open candidate store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("failed to close candidate store", slog.Any("error", err))
		}
	}()

	objects, err := storage.New(cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("failed to create object storage client: %w", err)
	}

	// Dependencies must be reachable before the listener opens.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := store.Ping(gctx); err != nil {
			return fmt.Errorf("candidate store unreachable: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return objects.EnsureBuckets(gctx, storage.Buckets, logger)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	model, err := llm.NewClient(ctx, cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer model.Close()

	renderer := rendering.NewChromeRenderer(time.Duration(cfg.PDFTimeout), logger)
	generator := artifacts.NewGenerator(renderer, objects, logger)

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.LoadConfig(),
	}, server.Deps{
		Service:   lifecycle.NewService(store, generator, logger),
		Extractor: extraction.NewExtractor(model, logger),
		CVs:       generator,
		Model:     model,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("dependencies ready",
		slog.String("store", cfg.StoreDriver),
		slog.String("model", model.Model()),
		slog.String("object_store", cfg.MinIOEndpoint))
	return srv.Start(ctx)
}
