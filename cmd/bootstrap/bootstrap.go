package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking-saga/config"
	"clinic-booking-saga/internal/bus"
	deliveryHttp "clinic-booking-saga/internal/delivery/http"
	"clinic-booking-saga/internal/delivery/http/handler"
	"clinic-booking-saga/internal/delivery/http/middleware"
	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/gateway"
	"clinic-booking-saga/internal/infrastructure/cache"
	"clinic-booking-saga/internal/infrastructure/database"
	"clinic-booking-saga/internal/repository"
	"clinic-booking-saga/internal/saga"
	"clinic-booking-saga/pkg/clock"
	"clinic-booking-saga/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Bus         bus.Bus
	Server      *http.Server

	busCtx    context.Context
	busCancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized.
func New() (*App, error) {
	app := &App{}

	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	if err := database.RunMigrations(cfg.DB, "db/migrations"); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logrus.Info("Migrations applied successfully")

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	eventBus, err := newBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bus: %w", err)
	}
	app.Bus = eventBus

	server, err := initializeServer(cfg, db, redisClient, eventBus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}
	app.Server = server

	return app, nil
}

func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func newBus(cfg config.BusConfig) (bus.Bus, error) {
	log := logrus.StandardLogger()
	switch cfg.Mode {
	case "kafka":
		return bus.NewKafkaBus(bus.KafkaBusConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			DLQTopic: cfg.DLQTopic,
		}, log), nil
	default:
		return bus.NewInMemoryBus(log), nil
	}
}

// initializeServer wires every saga component as a bus subscriber and
// builds the Gateway's HTTP-facing server, leaves first: Catalog, then
// Validator/Pricer, Quota, Orchestrator, Gateway.
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, eventBus bus.Bus) (*http.Server, error) {
	fixedClock, err := clock.NewFixedClock(cfg.Quota.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load quota timezone: %w", err)
	}

	discountPercent, err := decimal.NewFromString(cfg.Quota.DiscountPercent)
	if err != nil {
		return nil, fmt.Errorf("parse DISCOUNT_PERCENT: %w", err)
	}
	highValueThreshold, err := decimal.NewFromString(cfg.Quota.HighValueThreshold)
	if err != nil {
		return nil, fmt.Errorf("parse HIGH_VALUE_THRESHOLD: %w", err)
	}

	catalogRepo := repository.NewCatalogRepository(db)
	eventRepo := repository.NewEventRepository(db)
	stateRepo := repository.NewStateRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	validatorComp := saga.NewValidator(catalogRepo)
	pricerComp := saga.NewPricer(catalogRepo, fixedClock, discountPercent, highValueThreshold)
	quotaComp := saga.NewQuota(redisClient, quotaRepo, fixedClock, cfg.Quota.DailyCap)
	orchestratorComp := saga.NewOrchestrator(eventRepo, stateRepo, bookingRepo, fixedClock)

	wireSaga(eventBus, validatorComp, pricerComp, quotaComp, orchestratorComp)

	customValidator := validator.NewValidator()
	gatewaySvc := gateway.NewService(eventBus, eventRepo, stateRepo, catalogRepo)
	bookingHandler := handler.NewBookingHandler(gatewaySvc, customValidator)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigin)

	router := deliveryHttp.NewRouter(bookingHandler, corsMiddleware)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}, nil
}

// maxTransientRetries bounds local retries for transient storage errors
// before a handler gives up and lets the bus treat the delivery as failed.
const maxTransientRetries = 3

// withRetry retries fn on error with a short linear backoff. Saga
// handlers only ever return a Go error for Transient failures (storage,
// catalog lookup) — business failures are always returned as events, never
// as errors — so every error seen here is retry-eligible.
func withRetry(ctx context.Context, fn func() (entity.Event, error)) (entity.Event, error) {
	var lastErr error
	for attempt := 0; attempt < maxTransientRetries; attempt++ {
		evt, err := fn()
		if err == nil {
			return evt, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return entity.Event{}, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return entity.Event{}, lastErr
}

// wireSaga subscribes every component's handlers to the event types it
// consumes. Each subscriber publishes whatever follow-up event its pure
// handler function returns.
func wireSaga(b bus.Bus, v *saga.Validator, p *saga.Pricer, q *saga.Quota, o *saga.Orchestrator) {
	log := logrus.StandardLogger()

	publishOrLog := func(ctx context.Context, evt entity.Event, err error) error {
		if err != nil {
			return err
		}
		if evt.Type == "" {
			return nil
		}
		return b.Publish(ctx, evt)
	}

	b.Subscribe(entity.EventBookingInitiated, func(ctx context.Context, evt entity.Event) error {
		out, err := withRetry(ctx, func() (entity.Event, error) { return v.Handle(ctx, evt) })
		return publishOrLog(ctx, out, err)
	})

	b.Subscribe(entity.EventBookingValidated, func(ctx context.Context, evt entity.Event) error {
		out, err := withRetry(ctx, func() (entity.Event, error) { return p.Handle(ctx, evt) })
		return publishOrLog(ctx, out, err)
	})

	b.Subscribe(entity.EventBookingPriced, func(ctx context.Context, evt entity.Event) error {
		out, err := withRetry(ctx, func() (entity.Event, error) { return q.HandlePriced(ctx, evt) })
		return publishOrLog(ctx, out, err)
	})

	b.Subscribe(entity.EventBookingCompensate, func(ctx context.Context, evt entity.Event) error {
		out, err := withRetry(ctx, func() (entity.Event, error) { return q.HandleCompensate(ctx, evt) })
		return publishOrLog(ctx, out, err)
	})

	for _, eventType := range []entity.EventType{
		entity.EventBookingInitiated,
		entity.EventBookingValidated,
		entity.EventBookingValidationFailed,
		entity.EventBookingPriced,
		entity.EventBookingPricingFailed,
		entity.EventBookingQuotaAcquired,
		entity.EventBookingQuotaSkipped,
		entity.EventBookingQuotaFailed,
		entity.EventBookingQuotaReleased,
		entity.EventBookingCompensate,
		entity.EventBookingCompleted,
		entity.EventBookingFailed,
	} {
		b.Subscribe(eventType, func(ctx context.Context, evt entity.Event) error {
			var outs []entity.Event
			var err error
			for attempt := 0; attempt < maxTransientRetries; attempt++ {
				outs, err = o.Handle(ctx, evt)
				if err == nil {
					break
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
				}
			}
			if err != nil {
				return err
			}
			for _, out := range outs {
				if err := b.Publish(ctx, out); err != nil {
					log.WithError(err).WithField("transaction_id", evt.TransactionID).Error("publish orchestrator follow-up event")
					return err
				}
			}
			return nil
		})
	}
}

// Run starts the bus and HTTP server and handles graceful shutdown.
func (app *App) Run() {
	app.busCtx, app.busCancel = context.WithCancel(context.Background())
	go func() {
		if err := app.Bus.Run(app.busCtx); err != nil && app.busCtx.Err() == nil {
			logrus.WithError(err).Error("bus run loop exited")
		}
	}()

	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, bus, etc.)
func (app *App) Close() {
	if app.busCancel != nil {
		app.busCancel()
	}
	if app.Bus != nil {
		_ = app.Bus.Close()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
