package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/cache"
	"github.com/jonathan/talenttrek/internal/config"
	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/events"
	"github.com/jonathan/talenttrek/internal/server"
	"github.com/jonathan/talenttrek/internal/storage"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job board REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	log, err := newLogger(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	if serveMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	uploads, err := storage.New(ctx, cfg.Uploads)
	if err != nil {
		return fmt.Errorf("failed to set up uploads: %w", err)
	}

	postings, closeCache := connectCache(ctx, cfg.Redis, store, log)
	defer closeCache()

	publisher := connectEvents(cfg.Events, log)
	defer func() { _ = publisher.Close() }()

	srv, err := server.New(server.Deps{
		Config:   cfg,
		Store:    store,
		Uploads:  uploads,
		Postings: postings,
		Events:   publisher,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// connectCache returns the postings cache. Redis is optional; without it postings are
// read from the database on every request.
func connectCache(ctx context.Context, cfg config.RedisConfig, store *db.DB, log *zap.Logger) (*cache.Postings, func()) {
	if cfg.URL == "" {
		return cache.NewPostings(store, nil, 0, log), func() {}
	}

	rdb, err := cache.Connect(ctx, cfg.URL)
	if err != nil {
		log.Warn("redis unavailable, postings cache disabled", zap.Error(err))
		return cache.NewPostings(store, nil, 0, log), func() {}
	}
	log.Info("postings cache enabled", zap.Duration("ttl", cfg.TTL))
	return cache.NewPostings(store, rdb, cfg.TTL, log), func() { _ = rdb.Close() }
}

// connectEvents returns the event publisher. RabbitMQ is optional.
func connectEvents(cfg config.EventsConfig, log *zap.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.Dial(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	log.Info("publishing events", zap.String("exchange", cfg.Exchange))
	return publisher
}
