package app

import (
	"context"
	"fmt"

	config "hunt-sales-api/configs"
	"hunt-sales-api/pkg/handlers"
	"hunt-sales-api/pkg/ml"
	"hunt-sales-api/pkg/services"
	"hunt-sales-api/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App は起動時に一度だけ組み立てられるアプリケーション全体です。
type App struct {
	Router *gin.Engine
	Models *ml.ModelSet

	redis           *redis.Client
	shutdownTracing telemetry.ShutdownFunc
}

// New loads the model artifacts and wires services, handlers and routes.
// A model load failure is returned as a startup failure; the caller must not
// serve traffic in that case.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	models, err := ml.LoadModelSet(cfg.PredictiveModelPath, cfg.ForecastModelPath)
	if err != nil {
		return nil, services.NewStartupFailure("model artifacts could not be loaded", err)
	}
	logger.WithFields(logrus.Fields{
		"predictive_model": models.PredictiveVersion,
		"forecast_model":   models.ForecastVersion,
	}).Info("Models loaded")

	return NewWithModels(ctx, cfg, models, logger)
}

// NewWithModels wires the application around an already loaded model set.
func NewWithModels(ctx context.Context, cfg *config.Config, models *ml.ModelSet, logger logrus.FieldLogger) (*App, error) {
	shutdownTracing, err := telemetry.InitTracing(cfg.TracingEnabled)
	if err != nil {
		return nil, services.NewStartupFailure("tracing could not be initialized", err)
	}

	a := &App{
		Models:          models,
		shutdownTracing: shutdownTracing,
	}

	// Redisは任意。接続できない場合はキャッシュ無しで起動する
	var cache services.PredictionCache
	if cfg.RedisAddr != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).WithField("redis_addr", cfg.RedisAddr).Warn("Redis unavailable, prediction cache disabled")
		} else {
			a.redis = client
			cache = services.NewRedisPredictionCache(client, cfg.PredictionCacheTTL, logger)
			logger.WithField("redis_addr", cfg.RedisAddr).Info("Prediction cache enabled")
		}
	}

	metrics := services.NewMetrics()
	monitoringService := services.NewMonitoringService(cfg.MonitoringMaxEntries, logger)
	predictionService := services.NewSalesPredictionService(models.Regressor, models.PredictiveVersion, cache, metrics, logger)
	forecastService := services.NewSalesForecastService(models.Forecaster, models.ForecastVersion, metrics, logger)

	a.Router = NewRouter(RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
	}, Routes{
		Info:       handlers.NewInfoHandler(cfg.RepositoryURL),
		Sales:      handlers.NewSalesHandler(predictionService, forecastService),
		Monitoring: handlers.NewMonitoringHandler(monitoringService),
		Access:     monitoringService.LoggingMiddleware(),
		Metrics:    metrics.Handler(),
	})

	return a, nil
}

// Close releases Redis and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown tracing: %w", err)
		}
	}
	return firstErr
}
