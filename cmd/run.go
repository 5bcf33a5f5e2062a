package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"borrowbot/application"
	"borrowbot/cache"
	"borrowbot/config"
	"borrowbot/database"
	"borrowbot/events"
	"borrowbot/infrastructure"
	"borrowbot/ledger"
	"borrowbot/observability"
	"borrowbot/oracle"
	"borrowbot/repository"
	"borrowbot/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes the bot and blocks until ctx is cancelled or a component fails
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := ConfigureLogging(cfg); err != nil {
		return err
	}

	log.WithField("environment", cfg.Environment).Info("Starting borrowbot...")

	// Database
	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics provider")
		}
	}()

	// Redis holds the shared price snapshot
	log.Info("Connecting to Redis...")
	redisClient, err := cache.Connect(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Events: in-process bus, forwarded to NATS when configured
	eventBus := events.NewBus()
	subjectMapper := infrastructure.NewEventSubjectMapper()
	var messagePublisher infrastructure.MessagePublisher = infrastructure.NoopMessagePublisher{}
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer natsClient.Close()

		if err := natsClient.EnsureStream(infrastructure.EventStreamName, subjectMapper.StreamSubjects()); err != nil {
			return err
		}
		messagePublisher = natsClient
		log.WithField("connected", natsClient.IsConnected()).Info("Forwarding events to NATS")
	} else {
		log.Info("NATS_SERVERS not set, events stay in process")
	}
	infrastructure.NewEventForwarder(messagePublisher, subjectMapper).Register(eventBus)

	// Ledger
	log.Info("Connecting to TON liteservers...")
	tonLedger, err := ledger.Connect(ctx, cfg.TonConfigURL)
	if err != nil {
		return err
	}
	defer tonLedger.Close()

	// Settings must be complete before anything runs
	watcher := service.NewSettingsWatcher(repository.NewSettingsRepository(db), db)
	if err := watcher.Load(ctx); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	prices := service.NewPriceOracleCache(
		oracle.NewBinanceClient(cfg.BinanceBaseURL),
		cache.NewRedisPriceStore(redisClient),
		metrics,
		cfg.PriceSymbol,
	)
	prices.Warm(ctx)

	g, gctx := errgroup.WithContext(ctx)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	accounts := repository.NewAccountRepository(db)
	cycleRuns := repository.NewCycleRunRepository(db)
	transfers := service.NewTransferQueue(gctx, tonLedger, eventBus, metrics)
	schedulerConfig := application.DefaultSchedulerConfig(cfg.DayResetHour)

	borrowScheduler := application.NewDailyBatchScheduler(
		application.NewBorrowPipeline(accounts, tonLedger, service.NewBorrowService(uowFactory)),
		watcher, prices, metrics, schedulerConfig,
	).WithRunLog(cycleRuns)
	checkinScheduler := application.NewDailyBatchScheduler(
		application.NewCheckinPipeline(accounts, tonLedger, service.NewCheckinService(uowFactory), transfers, cfg.ProductAddress),
		watcher, prices, metrics, schedulerConfig,
	).WithRunLog(cycleRuns)

	g.Go(func() error { return prices.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return borrowScheduler.Run(gctx) })
	g.Go(func() error { return checkinScheduler.Run(gctx) })

	log.WithFields(log.Fields{
		"dayResetHour": cfg.DayResetHour,
		"symbol":       cfg.PriceSymbol,
	}).Info("Borrowbot is running")

	err = g.Wait()

	log.Info("Shutting down borrowbot...")
	transfers.WaitIdle()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Shutdown completed")
	return nil
}
