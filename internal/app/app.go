package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/problem-bank/internal/auth"
	"github.com/gokatarajesh/problem-bank/internal/auth/jwt"
	"github.com/gokatarajesh/problem-bank/internal/config"
	"github.com/gokatarajesh/problem-bank/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
	"github.com/gokatarajesh/problem-bank/internal/event"
	"github.com/gokatarajesh/problem-bank/internal/logging"
	"github.com/gokatarajesh/problem-bank/internal/problem"
	"github.com/gokatarajesh/problem-bank/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, broker, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher *event.Publisher
	http      *http.Server
}

// New bootstraps logger, Postgres, Redis, RabbitMQ and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	deps := []server.Dependency{{Name: "postgres", Ping: pool.Ping}}

	var (
		redisClient *redis.Client
		cache       problem.ProblemCache
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		cache = problem.NewCache(redisClient, cfg.Problems.CacheTTL)
		deps = append(deps, server.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("problem cache enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; problem cache disabled")
	}

	publisher, err := event.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	queries := sqlcgen.New(pool)
	problemRepo := repository.NewProblemRepository(queries)
	topicRepo := repository.NewTopicRepository(queries)

	problemSvc := problem.NewService(problemRepo, topicRepo, problem.ServiceOptions{
		Cache:       cache,
		Events:      publisher,
		Metrics:     problem.NewMetrics(registry),
		MaxPageSize: cfg.Problems.MaxPageSize,
	}, logger)

	problemHTTP := problem.NewHTTPHandler(problemSvc, problem.HTTPOptions{
		DefaultPageSize: cfg.Problems.DefaultPageSize,
		MaxPageSize:     cfg.Problems.MaxPageSize,
		Timeout:         cfg.Problems.StoreTimeout,
	}, logger)

	var tokenMgr *jwt.Manager
	if cfg.Security.JWTSecret != "" {
		tokenMgr = jwt.NewManager(jwt.TokenConfig{
			Secret: []byte(cfg.Security.JWTSecret),
			Issuer: cfg.Security.JWTIssuer,
		})
		logger.Info().Msg("write routes require an admin or editor token")
	} else {
		logger.Warn().Msg("JWT_SECRET not set; write routes are unauthenticated")
	}
	guard := auth.RequireRole(tokenMgr, logger.With().Str("component", "auth").Logger(), jwt.RoleAdmin, jwt.RoleEditor)

	apiServer := server.NewHTTPServer(cfg, logger, server.Options{
		Deps:     deps,
		Problems: problemHTTP,
		Guard:    guard,
		Gatherer: registry,
	})

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		publisher: publisher,
		http:      apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.close()
	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("rabbitmq shutdown error")
	}
	a.pool.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
