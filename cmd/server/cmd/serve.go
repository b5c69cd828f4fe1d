package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eventboard/server/internal/api"
	"github.com/eventboard/server/internal/api/handlers"
	"github.com/eventboard/server/internal/auth"
	"github.com/eventboard/server/internal/config"
	"github.com/eventboard/server/internal/domain/events"
	"github.com/eventboard/server/internal/domain/users"
	"github.com/eventboard/server/internal/metrics"
	"github.com/eventboard/server/internal/storage"
	"github.com/eventboard/server/internal/storage/postgres"
	"github.com/eventboard/server/internal/telemetry"
)

const (
	shutdownTimeout    = 10 * time.Second
	dbCollectInterval  = 15 * time.Second
	startupDBTimeout   = 10 * time.Second
	bootstrapUserLimit = 10 * time.Second
)

type serveOptions struct {
	*globalOptions
	host    string
	port    int
	migrate bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{globalOptions: global}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Optionally apply pending database migrations (--migrate)
- Create the bootstrap user if BOOTSTRAP_USERNAME and BOOTSTRAP_PASSWORD are set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Apply migrations first, log to the console
  server serve --migrate --log-format console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 3001)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func (o *serveOptions) resolveConfig() (config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port != 0 {
		if o.port < 0 || o.port > 65535 {
			return config.Config{}, fmt.Errorf("config error: invalid port %d", o.port)
		}
		cfg.Server.Port = o.port
	}
	return cfg, nil
}

func runServe(parent context.Context, opts *serveOptions) error {
	cfg, err := opts.resolveConfig()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("mode", cfg.Environment).Str("version", Version).Msg("starting eventboard server")
	for _, warning := range cfg.Warnings() {
		logger.Warn().Msg(warning)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init(Version, GitCommit, BuildDate, cfg.Environment)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if opts.migrate {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, startupDBTimeout)
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("database not reachable at startup; requests will fail until it is")
	}
	cancel()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret)

	if err := bootstrapUser(ctx, repo, tokens, cfg.Bootstrap, logger); err != nil {
		logger.Error().Err(err).Msg("user bootstrap failed")
	}

	handler := api.NewRouter(api.Dependencies{
		Config: cfg,
		Logger: logger,
		Events: events.NewService(repo.Events()),
		Auth:   users.NewService(repo.Users(), tokens),
		Tokens: tokens,
		Health: handlers.NewHealthChecker(repo, repo, Version, GitCommit),
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return metrics.NewDBCollector(pool, dbCollectInterval).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return pool, nil
}

// bootstrapUser creates the configured login account when it does not exist.
func bootstrapUser(ctx context.Context, repo storage.Repository, tokens users.TokenIssuer, cfg config.BootstrapConfig, logger zerolog.Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		logger.Debug().Msg("bootstrap user not configured; skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, bootstrapUserLimit)
	defer cancel()

	var created bool
	err := repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		var err error
		created, err = users.NewService(tx.Users(), tokens).EnsureUser(ctx, cfg.Username, cfg.Password)
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure bootstrap user: %w", err)
	}
	if created {
		logger.Info().Str("username", cfg.Username).Msg("bootstrapped user")
	}
	return nil
}
