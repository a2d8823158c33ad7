package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wattline/internal/cache"
	"wattline/internal/config"
	"wattline/internal/db"
	httpserver "wattline/internal/http"
	"wattline/internal/http/handlers"
	"wattline/internal/http/middleware"
	"wattline/internal/repository"
	"wattline/internal/service"
	"wattline/internal/ws"
)

const snapshotTTL = 5 * time.Minute

// App wires energy service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs application components. Redis is optional: with no addr
// configured the service runs without the snapshot cache.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	samplingInterval, err := cfg.SamplingInterval()
	if err != nil {
		return nil, err
	}
	interval := service.Interval(samplingInterval)

	var redisClient *redis.Client
	var snapshots *cache.ConsumptionCache
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		snapshots = cache.NewConsumptionCache(redisClient, snapshotTTL)
	}

	sampleRepo := repository.NewSampleRepository(sqlDB)
	sensorRepo := repository.NewSensorRepository(sqlDB)
	tariffRepo := repository.NewTariffRepository(sqlDB)
	deviceRepo := repository.NewDeviceRepository(sqlDB)
	thresholdRepo := repository.NewThresholdRepository(sqlDB)
	alertRepo := repository.NewAlertRepository(sqlDB)

	var snapshotCache service.SnapshotCache
	var invalidator service.SnapshotInvalidator
	if snapshots != nil {
		snapshotCache = snapshots
		invalidator = snapshots
	}

	estimator := service.NewEstimator(sampleRepo, tariffRepo, snapshotCache, interval, logger)
	aggregator := service.NewAggregator(deviceRepo, estimator, sampleRepo, interval, logger)
	alertEngine := service.NewAlertEngine(alertRepo, thresholdRepo, deviceRepo, interval, logger)
	thresholds := service.NewThresholdService(thresholdRepo, interval)
	ingestor := service.NewIngestor(sensorRepo, sampleRepo, alertEngine, invalidator, logger)

	routes := httpserver.RouterDeps{
		Measurements:    handlers.NewMeasurementsHandler(ingestor, logger),
		Consumption:     handlers.NewConsumptionHandlers(estimator, deviceRepo, logger),
		UserConsumption: handlers.NewUserConsumptionHandlers(aggregator, logger),
		Thresholds:      handlers.NewThresholdHandlers(thresholds, alertEngine, logger),
		Alerts:          handlers.NewAlertsHandlers(alertEngine, logger),
		SensorSocket:    ws.NewSensorFeed(ingestor, logger),
		Health:          handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts serving HTTP requests.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
