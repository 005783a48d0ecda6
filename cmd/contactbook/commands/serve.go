package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/contactbook/internal/auth"
	"github.com/dyluth/contactbook/internal/config"
	"github.com/dyluth/contactbook/internal/logging"
	"github.com/dyluth/contactbook/internal/printer"
	"github.com/dyluth/contactbook/internal/server"
	"github.com/dyluth/contactbook/internal/store"
	"github.com/dyluth/contactbook/internal/views"
	"github.com/dyluth/contactbook/pkg/events"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr        string
	serveDatabaseURL string
	serveRedisURL    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the contact book web server",
	Long: `Run the contact book web server.

Creates the contacts table if needed, then serves HTTP until interrupted.
Flags override contactbook.yml and the environment.

Examples:
  # SQLite file in the current directory on :8000
  contactbook serve

  # PostgreSQL with the change feed enabled
  contactbook serve --database-url postgres://app:pw@db:5432/contacts --redis-url redis://redis:6379/0`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "sqlite://<path> or postgres:// connection string")
	serveCmd.Flags().StringVar(&serveRedisURL, "redis-url", "", "Redis URL for the change feed")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return printer.Error("invalid log level", err.Error(), []string{"Valid levels: debug, info, warn, error"})
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(app.server.ListenAndServe)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return printer.Error(
			"server stopped with an error",
			err.Error(),
			[]string{fmt.Sprintf("Check that %s is free:\n  contactbook serve --addr :8080", cfg.Server.Addr)},
		)
	}

	logger.Info("server stopped")
	return nil
}

// applyServeFlags lets explicit flags win over file and environment
func applyServeFlags(cfg *config.Config) {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDatabaseURL != "" {
		cfg.Database.URL = serveDatabaseURL
	}
	if serveRedisURL != "" {
		cfg.Events.RedisURL = serveRedisURL
	}
}

// app holds everything serve opens, so it can be closed in one place.
type app struct {
	server *server.Server
	store  *store.Store
	events *events.Client // nil when the feed is disabled
}

// Close releases the storage and Redis connections.
func (a *app) Close() {
	if a.events != nil {
		a.events.Close()
	}
	a.store.Close()
}

// newApp opens storage, runs migrations, connects the optional change feed and
// builds the HTTP server.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"database connection failed",
			err.Error(),
			map[string]string{"Database": cfg.Database.URL},
			[]string{"Check database.url in contactbook.yml or the DATABASE_URL variable"},
		)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, printer.Error("database migration failed", err.Error(), nil)
	}
	logger.Info("storage ready", zap.String("engine", st.Dialect()))

	a := &app{store: st}
	checks := []server.HealthCheck{{Name: "database", Ping: st.Ping}}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.RedisURL != "" {
		client, err := connectEvents(ctx, cfg)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.events = client
		publisher = client
		checks = append(checks, server.HealthCheck{Name: "events", Ping: client.Ping})
		logger.Info("change feed enabled", zap.String("channel", events.ContactEventsChannel(cfg.Events.Instance)))
	}

	if !cfg.Credentials.Configured() {
		logger.Warn("delete credentials are not configured; every delete will be rejected",
			zap.String("username_env", config.EnvUsername),
			zap.String("password_env", config.EnvPassword))
	}

	renderer, err := views.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	srv, err := server.New(server.Options{
		Addr:         cfg.Server.Addr,
		Store:        st,
		Gate:         auth.NewGate(cfg.Credentials, ""),
		Views:        renderer,
		Publisher:    publisher,
		Logger:       logger,
		HealthChecks: checks,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.server = srv

	return a, nil
}

// connectEvents opens and pings the Redis change feed
func connectEvents(ctx context.Context, cfg *config.Config) (*events.Client, error) {
	redisOpts, err := redis.ParseURL(cfg.Events.RedisURL)
	if err != nil {
		return nil, printer.Error("invalid Redis URL", err.Error(), []string{"Use the form redis://host:6379/0"})
	}

	client, err := events.NewClient(redisOpts, cfg.Events.Instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create events client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.Events.RedisURL),
			map[string]string{"Error": err.Error()},
			[]string{
				"Start Redis, or",
				"Clear events.redis_url / REDIS_URL to run without the change feed",
			},
		)
	}

	return client, nil
}
