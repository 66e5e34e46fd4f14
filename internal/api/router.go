package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glucotrack/backend/internal/api/controllers"
	"github.com/glucotrack/backend/internal/api/middleware"
	"github.com/glucotrack/backend/internal/config"
	"github.com/glucotrack/backend/internal/db"
	"github.com/glucotrack/backend/internal/metrics"
	"github.com/glucotrack/backend/internal/services"
	"github.com/glucotrack/backend/internal/utils"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router manages the API routes and controllers
type Router struct {
	engine             *gin.Engine
	logger             *utils.Logger
	config             *config.Config
	authMiddleware     *middleware.AuthMiddleware
	serviceProvider    *services.ServiceProvider
	db                 *db.Database
	patientController  *controllers.PatientController
	analysisController *controllers.AnalysisController
	forecastController *controllers.ForecastController
}

// NewRouter creates a new Router instance
func NewRouter(
	config *config.Config,
	logger *utils.Logger,
	db *db.Database,
	serviceProvider *services.ServiceProvider,
) *Router {
	if config.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "Origin"}
	engine.Use(cors.New(corsConfig))

	authMiddleware := middleware.NewAuthMiddleware(&config.JWT)

	return &Router{
		engine:          engine,
		logger:          logger.Named("router"),
		config:          config,
		authMiddleware:  authMiddleware,
		serviceProvider: serviceProvider,
		db:              db,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	// Health and metrics endpoints (no auth required)
	r.engine.GET("/health", r.health)
	r.engine.GET("/metrics", metrics.Handler())

	authController := controllers.NewAuthController(r.serviceProvider.User(), &r.config.JWT, r.logger)
	r.patientController = controllers.NewPatientController(
		r.serviceProvider.Patient(),
		r.serviceProvider.Ingest(),
		r.logger,
	)
	r.analysisController = controllers.NewAnalysisController(r.serviceProvider.Analysis(), r.logger)
	r.forecastController = controllers.NewForecastController(r.serviceProvider.Forecast(), r.logger)

	// Auth routes (no auth required)
	authController.RegisterRoutes(r.engine.Group("/api"))

	// All main API routes are under /api/v1 and require authentication
	apiV1 := r.engine.Group("/api/v1")
	apiV1.Use(r.authMiddleware.RequireAuth())

	r.patientController.RegisterRoutes(apiV1)
	r.analysisController.RegisterRoutes(apiV1)
	r.forecastController.RegisterRoutes(apiV1)

	if !r.config.Server.IsProduction() {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.logger.Info("API routes setup completed")
}

// health reports the service and dependency status
func (r *Router) health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "up", "cache": "up"}

	if err := r.db.VerifyConnection(); err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}

	if cacheClient := r.serviceProvider.Cache(); cacheClient == nil {
		checks["cache"] = "disabled"
	} else if err := cacheClient.Ping(); err != nil {
		checks["cache"] = "down"
	}

	// Model absence degrades features but does not make the service unhealthy.
	checks["sequence_model"] = "loaded"
	if !r.serviceProvider.Forecast().Info().Ready {
		checks["sequence_model"] = "not_loaded"
	}
	checks["clustering_model"] = "loaded"
	if !r.serviceProvider.Analysis().HasModel() {
		checks["clustering_model"] = "fallback"
	}

	body := gin.H{"status": "healthy", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}

	c.JSON(status, body)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
