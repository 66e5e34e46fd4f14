package services

import (
	"context"
	"fmt"
	"time"

	"github.com/glucotrack/backend/internal/analytics"
	"github.com/glucotrack/backend/internal/cache"
	"github.com/glucotrack/backend/internal/config"
	"github.com/glucotrack/backend/internal/db"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/forecast"
	"github.com/glucotrack/backend/internal/kafka"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// ServiceProvider manages all services for the application
type ServiceProvider struct {
	logger   *utils.Logger
	config   *config.Config
	database *db.Database

	redisCache *cache.RedisCache
	producer   *kafka.Producer
	consumer   *kafka.Consumer

	userService     *UserService
	patientService  *PatientService
	analysisService *AnalysisService
	forecastService *ForecastService
	ingestService   *IngestService
}

// NewServiceProvider creates a new service provider
func NewServiceProvider(
	logger *utils.Logger,
	config *config.Config,
	database *db.Database,
) *ServiceProvider {
	return &ServiceProvider{
		logger:   logger.Named("services"),
		config:   config,
		database: database,
	}
}

// Initialize initializes all services
func (sp *ServiceProvider) Initialize(ctx context.Context) error {
	var err error

	repoFactory := repository.NewRepositoryFactory(sp.database.DB)

	// The clustering model is optional: without it, classification
	// degrades to the rule-based heuristic.
	var clusteringArtifact *analytics.ClusteringArtifact
	if path := sp.config.Model.ClusteringArtifactPath; path != "" {
		clusteringArtifact, err = analytics.LoadClusteringArtifact(path)
		if err != nil {
			sp.logger.Warn("Clustering model unavailable, using rule-based classification",
				zap.String("path", path),
				zap.Error(err),
			)
			clusteringArtifact = nil
		}
	}
	classifier := analytics.NewProfileClassifier(clusteringArtifact)

	// The sequence model is also optional, but without it forecast
	// requests are rejected rather than degraded.
	var forecaster *forecast.Forecaster
	modelReady := false
	if path := sp.config.Model.SequenceArtifactPath; path != "" {
		sequenceArtifact, loadErr := forecast.LoadSequenceArtifact(path)
		if loadErr != nil {
			sp.logger.Warn("Sequence model unavailable, forecasting disabled",
				zap.String("path", path),
				zap.Error(loadErr),
			)
		} else {
			forecaster = forecast.NewForecaster(sequenceArtifact.Predictor(), sequenceArtifact.Scaler())
			modelReady = true
		}
	}
	if forecaster == nil {
		forecaster = forecast.NewForecaster(nil, nil)
	}

	// Redis is a cache, not a dependency: degrade to uncached reports.
	sp.redisCache, err = cache.NewRedisCache(
		sp.config.Redis.Addr,
		sp.config.Redis.Password,
		sp.config.Redis.DB,
	)
	if err != nil {
		sp.logger.Warn("Redis unavailable, analysis reports will not be cached", zap.Error(err))
		sp.redisCache = nil
	}

	sp.producer, err = kafka.NewProducer(&sp.config.Kafka, sp.logger)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	sp.consumer, err = kafka.NewConsumer(&sp.config.Kafka, sp.logger, sp.producer)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	sp.userService = NewUserService(repoFactory.User(), sp.logger)
	sp.patientService = NewPatientService(repoFactory.Patient(), sp.logger)

	var reportCache ReportCache
	var invalidator CacheInvalidator
	if sp.redisCache != nil {
		reportCache = sp.redisCache
		invalidator = sp.redisCache
	}

	sp.analysisService = NewAnalysisService(
		repoFactory.Reading(),
		repoFactory.Analysis(),
		classifier,
		reportCache,
		time.Duration(sp.config.Redis.AnalysisTTL)*time.Second,
		sp.logger,
	)

	sp.forecastService = NewForecastService(
		repoFactory.Reading(),
		repoFactory.Patient(),
		forecaster,
		modelReady,
		sp.producer,
		sp.logger,
	)

	sp.ingestService = NewIngestService(
		repoFactory.Reading(),
		repoFactory.Patient(),
		invalidator,
		sp.logger,
	)

	sp.consumer.RegisterHandler(sp.config.Kafka.ReadingsTopic, sp.ingestService.HandleMessage)
	if err = sp.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Kafka consumer: %w", err)
	}

	sp.logger.Info("All services initialized successfully")
	return nil
}

// Shutdown performs a graceful shutdown of all services
func (sp *ServiceProvider) Shutdown() error {
	sp.logger.Info("Shutting down services")

	if sp.consumer != nil {
		sp.consumer.Stop()
	}

	if sp.producer != nil {
		sp.producer.Close()
	}

	if sp.redisCache != nil {
		if err := sp.redisCache.Close(); err != nil {
			sp.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	sp.logger.Info("Services shut down")
	return nil
}

// User returns the user service
func (sp *ServiceProvider) User() *UserService {
	return sp.userService
}

// Patient returns the patient service
func (sp *ServiceProvider) Patient() *PatientService {
	return sp.patientService
}

// Analysis returns the analysis service
func (sp *ServiceProvider) Analysis() *AnalysisService {
	return sp.analysisService
}

// Forecast returns the forecast service
func (sp *ServiceProvider) Forecast() *ForecastService {
	return sp.forecastService
}

// Ingest returns the ingest service
func (sp *ServiceProvider) Ingest() *IngestService {
	return sp.ingestService
}

// Cache returns the Redis cache, which may be nil
func (sp *ServiceProvider) Cache() *cache.RedisCache {
	return sp.redisCache
}
