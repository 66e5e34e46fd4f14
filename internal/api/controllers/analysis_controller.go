package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glucotrack/backend/internal/services"
	"github.com/glucotrack/backend/internal/utils"
)

// Analysis windows are bounded: enough days for a stable profile, not so
// many that ancient data drives current guidance.
const (
	MinAnalysisDays = 7
	MaxAnalysisDays = 30
	MinHistoryDays  = 1
	MaxHistoryDays  = 90
)

// AnalysisController handles glucose analysis endpoints
type AnalysisController struct {
	analysisService *services.AnalysisService
	logger          *utils.Logger
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(analysisService *services.AnalysisService, logger *utils.Logger) *AnalysisController {
	return &AnalysisController{
		analysisService: analysisService,
		logger:          logger.Named("analysis_controller"),
	}
}

// RegisterRoutes registers the controller's routes with the router group
func (ac *AnalysisController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/clusters/info", ac.ClusterCatalog)

	patients := router.Group("/patients/:id")
	{
		patients.GET("/metrics/daily", ac.DailyMetrics)
		patients.GET("/analysis", ac.Analysis)
		patients.GET("/analysis/history", ac.History)
	}
}

// DailyMetrics computes the metrics for one patient-day
// @Summary Daily metrics
// @Description Compute the clinical glucose metrics for one calendar day
// @Tags analysis
// @Produce json
// @Param id path int true "Patient ID"
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} models.DailyMetricsRecord
// @Failure 400 {object} utils.ErrorResponse "Insufficient data or bad date"
// @Router /patients/{id}/metrics/daily [get]
func (ac *AnalysisController) DailyMetrics(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be formatted as YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	record, err := ac.analysisService.ComputeDailyMetrics(id, date)
	if err != nil {
		utils.HandleError(c, err, ac.logger)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Analysis builds the full analysis report over a rolling window
// @Summary Analysis report
// @Description Daily metrics, profile classification, trend, risk and recommendations
// @Tags analysis
// @Produce json
// @Param id path int true "Patient ID"
// @Param days query int false "Window size in days (7-30, default 14)"
// @Success 200 {object} services.AnalysisReport
// @Failure 400 {object} utils.ErrorResponse
// @Router /patients/{id}/analysis [get]
func (ac *AnalysisController) Analysis(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	days, ok := parseDaysParam(c, 14, MinAnalysisDays, MaxAnalysisDays)
	if !ok {
		return
	}

	report, err := ac.analysisService.GetAnalysisReport(id, days)
	if err != nil {
		utils.HandleError(c, err, ac.logger)
		return
	}

	c.JSON(http.StatusOK, report)
}

// History returns the stored analysis trail
// @Summary Analysis history
// @Tags analysis
// @Produce json
// @Param id path int true "Patient ID"
// @Param days query int false "Window size in days (1-90, default 30)"
// @Success 200 {object} services.AnalysisHistory
// @Router /patients/{id}/analysis/history [get]
func (ac *AnalysisController) History(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	days, ok := parseDaysParam(c, 30, MinHistoryDays, MaxHistoryDays)
	if !ok {
		return
	}

	history, err := ac.analysisService.GetHistory(id, days)
	if err != nil {
		utils.HandleError(c, err, ac.logger)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ClusterCatalog lists the glycemic control profiles
// @Summary Cluster catalog
// @Tags analysis
// @Produce json
// @Success 200 {array} services.ClusterInfo
// @Router /clusters/info [get]
func (ac *AnalysisController) ClusterCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"clusters":     ac.analysisService.ClusterCatalog(),
		"model_loaded": ac.analysisService.HasModel(),
	})
}

// parseDaysParam parses the days query parameter within bounds
func parseDaysParam(c *gin.Context, fallback, minDays, maxDays int) (int, bool) {
	raw := c.DefaultQuery("days", strconv.Itoa(fallback))
	days, err := strconv.Atoi(raw)
	if err != nil || days < minDays || days > maxDays {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Days must be an integer between " + strconv.Itoa(minDays) + " and " + strconv.Itoa(maxDays),
		})
		return 0, false
	}
	return days, true
}
