package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/resumes"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/storage"
	"github.com/jonathan/resume-builder/internal/storage/local"
	"github.com/jonathan/resume-builder/internal/storage/s3"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the /api endpoints for resumes, analysis, AI optimization and chat.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply database migrations on startup (postgres store)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, serveMigrate)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey())
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn("no AI API key configured; optimization and chat are disabled",
			zap.String("provider", cfg.LLMProvider))
		client = nil
	case err != nil:
		return fmt.Errorf("failed to create LLM client: %w", err)
	default:
		defer func() { _ = client.Close() }()
	}

	opt := optimizer.New(client, logger.Named("optimizer"))
	pandoc := &compiler.Pandoc{Binary: cfg.PandocPath, Timeout: time.Duration(cfg.CompileTimeout)}
	if !pandoc.Available() {
		logger.Warn("pandoc not found; DOCX import and export are disabled", zap.String("path", cfg.PandocPath))
	}

	resumeService := resumes.New(resumes.Deps{
		Store:     store,
		Objects:   objects,
		Compiler:  newCompiler(cfg, cfg.AllowPlaceholderPDF, logger),
		Converter: pandoc,
		Optimizer: opt,
		Logger:    logger.Named("resumes"),
	})

	srv, err := server.New(cfg, server.Deps{
		Store:     store,
		Resumes:   resumeService,
		Optimizer: opt,
		Assistant: assistant.New(client, logger.Named("assistant")),
		Fetcher: fetch.NewFetcher(fetch.FetcherConfig{
			UseBrowser: cfg.BrowserFetch,
		}, logger.Named("fetch")),
		Limiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}

// openStore opens the configured persistence backend, migrating postgres
// when requested.
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (db.Store, error) {
	store, err := db.Open(ctx, db.Options{
		Backend:     cfg.StoreBackend,
		DataFile:    cfg.DataFile,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}
	if pg, ok := store.(*db.DB); ok && migrate {
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	return store, nil
}

func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.ObjectStore == config.ObjectStoreS3 {
		store, err := s3.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := local.New(cfg.ObjectStoreDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func llmConfig(cfg *config.Config) *llm.Config {
	lc := llm.ConfigFor(cfg.LLMProvider)
	if cfg.OpenAIBaseURL != "" {
		lc.BaseURL = cfg.OpenAIBaseURL
	}
	return lc
}

func newCompiler(cfg *config.Config, allowPlaceholder bool, logger *zap.Logger) *compiler.Compiler {
	return compiler.NewCompiler(cfg.PDFLatexPath, time.Duration(cfg.CompileTimeout), allowPlaceholder, logger.Named("compiler"))
}
