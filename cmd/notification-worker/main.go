package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/atriumcare/carecoord-backend/internal/consumers"
	consumerauth "github.com/atriumcare/carecoord-backend/internal/consumers/auth"
	"github.com/atriumcare/carecoord-backend/internal/consumers/careplan"
	"github.com/atriumcare/carecoord-backend/internal/consumers/document"
	"github.com/atriumcare/carecoord-backend/internal/consumers/provider"
	"github.com/atriumcare/carecoord-backend/internal/consumers/serviceplan"
	"github.com/atriumcare/carecoord-backend/internal/delivery"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/internal/realtime"
	"github.com/atriumcare/carecoord-backend/internal/serviceplans"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	"github.com/atriumcare/carecoord-backend/pkg/config"
	"github.com/atriumcare/carecoord-backend/pkg/db"
	"github.com/atriumcare/carecoord-backend/pkg/events/idempotency"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
	"github.com/atriumcare/carecoord-backend/pkg/metrics"
	"github.com/atriumcare/carecoord-backend/pkg/migrate"
	"github.com/atriumcare/carecoord-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "notification-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "notification-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	eventBus, err := bus.New(redisClient.Raw(), cfg.Bus, logg)
	if err != nil {
		logg.Error(ctx, "failed to create event bus", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	consumerMetrics := metrics.NewConsumerMetrics(registry)
	deliveryMetrics := metrics.NewDeliveryMetrics(registry)

	hub := realtime.NewHub()
	defer hub.Close()

	engine, err := buildEngine(cfg, logg, dbClient, eventBus, hub, deliveryMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build notification engine", err)
		os.Exit(1)
	}

	idem, err := idempotency.NewManager(redisClient, cfg.Bus.IdempotencyTTL)
	if err != nil {
		logg.Error(ctx, "failed to create idempotency manager", err)
		os.Exit(1)
	}

	handlers, err := buildHandlers(engine, idem, dbClient, redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build consumers", err)
		os.Exit(1)
	}

	runner, err := consumers.NewRunner(eventBus, logg, consumerMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create consumer runner", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	for _, handler := range handlers {
		wg.Add(1)
		go func(h consumers.Handler) {
			defer wg.Done()
			if err := runner.Run(ctx, h); err != nil && ctx.Err() == nil {
				logg.Error(ctx, "consumer stopped unexpectedly", err)
			}
		}(handler)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Worker.HTTPPort,
		Handler: newOpsRouter(cfg, logg, dbClient, redisClient, registry),
	}

	go func() {
		startCtx := logg.WithFields(ctx, map[string]any{
			"env":  cfg.App.Env,
			"addr": server.Addr,
		})
		logg.Info(startCtx, "starting ops server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "ops server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info(context.Background(), "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(context.Background(), "ops server shutdown failed", err)
	}

	wg.Wait()
	logg.Info(context.Background(), "worker stopped")
}

func buildEngine(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	eventBus *bus.Bus,
	hub *realtime.Hub,
	deliveryMetrics *metrics.DeliveryMetrics,
) (notifications.Service, error) {
	directory, err := delivery.NewContactDirectory(dbClient.DB())
	if err != nil {
		return nil, err
	}

	retry := delivery.NewRetryPolicy(cfg.Delivery)
	httpClient := &http.Client{Timeout: cfg.Delivery.RequestTimeout}

	adapters := []delivery.Adapter{delivery.NewInAppAdapter(hub)}

	if cfg.Email.APIKey != "" {
		email, err := delivery.NewEmailAdapter(cfg.Email, retry, directory, delivery.WithEmailHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, email)
	} else {
		logg.Warn(context.Background(), "email adapter disabled: no SendGrid API key configured")
	}

	if cfg.SMS.AccountSID != "" {
		sms, err := delivery.NewSMSAdapter(cfg.SMS, retry, directory, delivery.WithSMSHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, sms)
	} else {
		logg.Warn(context.Background(), "sms adapter disabled: no Twilio account configured")
	}

	return notifications.NewService(
		notifications.NewRepository(dbClient.DB()),
		notifications.NewPreferenceRepository(dbClient.DB()),
		adapters,
		cfg.Worker.PreferenceCacheTTL,
		notifications.NewBusHooks(eventBus, logg),
		logg,
		deliveryMetrics,
	)
}

func buildHandlers(
	engine notifications.Service,
	idem *idempotency.Manager,
	dbClient *db.Client,
	redisClient *redis.Client,
	logg *logger.Logger,
) ([]consumers.Handler, error) {
	carePlanConsumer, err := careplan.NewConsumer(engine, idem, serviceplans.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return nil, err
	}
	servicePlanConsumer, err := serviceplan.NewConsumer(engine, idem, logg)
	if err != nil {
		return nil, err
	}
	documentConsumer, err := document.NewConsumer(engine, idem, logg)
	if err != nil {
		return nil, err
	}
	providerConsumer, err := provider.NewConsumer(engine, idem, redisClient, logg)
	if err != nil {
		return nil, err
	}
	authConsumer, err := consumerauth.NewConsumer(engine, idem, logg)
	if err != nil {
		return nil, err
	}

	return []consumers.Handler{
		carePlanConsumer,
		servicePlanConsumer,
		documentConsumer,
		providerConsumer,
		authConsumer,
	}, nil
}
