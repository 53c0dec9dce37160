package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/freightwatch-systems/risk-engine/internal/config"
	"github.com/freightwatch-systems/risk-engine/internal/dlq"
	"github.com/freightwatch-systems/risk-engine/internal/factors"
	"github.com/freightwatch-systems/risk-engine/internal/handlers"
	"github.com/freightwatch-systems/risk-engine/internal/logging"
	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	natsclient "github.com/freightwatch-systems/risk-engine/internal/messaging/nats"
	"github.com/freightwatch-systems/risk-engine/internal/pipeline"
	"github.com/freightwatch-systems/risk-engine/internal/repository"
	"github.com/freightwatch-systems/risk-engine/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	logger = logger.With(logging.Service("risk-engine"))

	if err := run(cfg, logger); err != nil {
		logger.Error("service exited with error", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connString := cfg.Database.Postgres.ConnString()

	logger.Info("running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		return fmt.Errorf("initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo, err := repository.NewPostgresRepository(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer repo.Close()

	// The factor provider shares the repository's pool rather than opening
	// a second one.
	var provider factors.Provider = factors.NewPostgresProviderFromPool(repo.Pool())

	if cfg.Redis.Enabled {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		provider = factors.NewCachedProvider(provider, redisClient, cfg.Factors.CacheTTL)
		logger.Info("factor cache enabled", "ttl", cfg.Factors.CacheTTL.String())
	}

	natsCfg := natsclient.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Username = cfg.NATS.Username
	natsCfg.Password = cfg.NATS.Password

	js, err := natsclient.NewJetStreamClient(natsCfg)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer js.Close()

	for _, stream := range []natsclient.StreamConfig{
		natsclient.DelayEventsStream,
		natsclient.RiskEventsStream,
	} {
		if _, err := js.CreateOrUpdateStream(ctx, stream); err != nil {
			return fmt.Errorf("ensure stream %s: %w", stream.Name, err)
		}
	}

	queue, err := dlq.NewJetStreamQueue(ctx, js)
	if err != nil {
		return fmt.Errorf("initialize dead-letter queue: %w", err)
	}

	consumerCfg := natsclient.DefaultConsumerConfig(messaging.ConsumerRiskEngine, messaging.SubjectDelayPredicted)
	consumerCfg.AckWait = cfg.Pipeline.AckWait
	consumerCfg.MaxDeliver = cfg.Pipeline.MaxDeliver
	consumerCfg.MaxAckPending = cfg.Pipeline.MaxAckPending
	consumerCfg.NakDelay = cfg.Pipeline.NakDelay

	if _, err := js.CreateOrUpdateConsumer(ctx, natsclient.DelayEventsStream.Name, consumerCfg); err != nil {
		return fmt.Errorf("ensure consumer: %w", err)
	}

	p := pipeline.New(provider, js, logger, cfg.Factors.LookupTimeout, pipeline.WithStore(repo))
	consumer := pipeline.NewConsumer(p, queue, logger)

	streamConsumer := js.NewStreamConsumer(natsclient.DelayEventsStream.Name, consumerCfg)
	stopConsuming, err := streamConsumer.Consume(ctx, consumer.Handle)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	defer stopConsuming()

	logger.Info("consuming predicted delay events",
		logging.Subject(messaging.SubjectDelayPredicted),
		"stream", natsclient.DelayEventsStream.Name,
	)

	handler := handlers.NewHandler(repo, queue, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	// Stop pulling new records first; in-flight records either finish and
	// ack or stay unacknowledged for redelivery.
	stopConsuming()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	if err := js.Drain(); err != nil {
		logger.Warn("nats drain failed", logging.Error(err))
	}

	logger.Info("stopped gracefully")
	return nil
}
