package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/companies/internal/company/config"
	"github.com/gartstein/companies/internal/company/controller"
	"github.com/gartstein/companies/internal/company/db"
	"github.com/gartstein/companies/internal/company/events"
	"github.com/gartstein/companies/internal/company/handlers"
	"github.com/gartstein/companies/internal/company/metrics"
	"go.uber.org/zap"
)

const connectTimeout = time.Minute

type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	repo, err := connectDatabase(cfg.Database(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	producer, err := initProducer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	companySvc := controller.NewCompanyService(repo, producer, logger,
		controller.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize))
	companyHandler := handlers.NewCompanyHandler(companySvc, logger)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, metrics.New(nil))
	if err := server.RegisterHTTPGateway(companyHandler, cfg.CORSOrigins); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.MonitorHealth(ctx, repo, cfg.HealthInterval)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger at the configured level.
func initLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// connectDatabase opens the Record Store, retrying with exponential backoff
// while the database comes up.
func connectDatabase(dbConf *db.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	operation := func() error {
		var err error
		repo, err = db.NewRepository(dbConf)
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Error(err),
			zap.Duration("next_attempt", next),
		)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectTimeout
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	logger.Info("Connected to database", zap.String("driver", dbConf.Driver))
	return repo, nil
}

// initProducer starts the Kafka producer, or a no-op one when no brokers are
// configured.
func initProducer(cfg *config.Config, logger *zap.Logger) (eventProducer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured, change events are disabled")
		return events.NopProducer{}, nil
	}

	var producer *events.Producer
	operation := func() error {
		var err error
		producer, err = events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectTimeout
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return producer, nil
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
