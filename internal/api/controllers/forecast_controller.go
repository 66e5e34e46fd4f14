package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glucotrack/backend/internal/forecast"
	"github.com/glucotrack/backend/internal/services"
	"github.com/glucotrack/backend/internal/utils"
)

// PlanStepRequest represents one planned future input step
type PlanStepRequest struct {
	Carbs             float64 `json:"carbs" binding:"omitempty,gte=0"`
	Bolus             float64 `json:"bolus" binding:"omitempty,gte=0"`
	ExerciseIntensity float64 `json:"exercise_intensity" binding:"omitempty,gte=0,lte=10"`
	ExerciseDuration  float64 `json:"exercise_duration" binding:"omitempty,gte=0"`
}

// PredictRequest represents the forecast request body
type PredictRequest struct {
	Steps int               `json:"steps" binding:"required,gte=1,lte=24"`
	Plan  []PlanStepRequest `json:"plan" binding:"omitempty,max=24,dive"`
}

// ForecastController handles glucose forecasting endpoints
type ForecastController struct {
	forecastService *services.ForecastService
	logger          *utils.Logger
}

// NewForecastController creates a new forecast controller
func NewForecastController(forecastService *services.ForecastService, logger *utils.Logger) *ForecastController {
	return &ForecastController{
		forecastService: forecastService,
		logger:          logger.Named("forecast_controller"),
	}
}

// RegisterRoutes registers the controller's routes with the router group
func (fc *ForecastController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/model/info", fc.ModelInfo)
	router.POST("/patients/:id/predict-glucose", fc.Predict)
}

// Predict forecasts future glucose values for a patient
// @Summary Predict glucose
// @Description Roll the sequence model forward over the patient's latest readings
// @Tags forecast
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param request body PredictRequest true "Forecast horizon and planned inputs"
// @Success 200 {object} forecast.Result
// @Failure 400 {object} utils.ErrorResponse "Bad horizon or not enough history"
// @Failure 503 {object} utils.ErrorResponse "Model not loaded"
// @Router /patients/{id}/predict-glucose [post]
func (fc *ForecastController) Predict(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleValidationErrors(c, err)
		return
	}

	plan := make([]forecast.PlanStep, len(req.Plan))
	for i, p := range req.Plan {
		plan[i] = forecast.PlanStep{
			Carbs:             p.Carbs,
			Bolus:             p.Bolus,
			ExerciseIntensity: p.ExerciseIntensity,
			ExerciseDuration:  p.ExerciseDuration,
		}
	}

	result, err := fc.forecastService.PredictGlucose(id, plan, req.Steps)
	if err != nil {
		utils.HandleError(c, err, fc.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModelInfo describes the loaded forecasting model
// @Summary Model info
// @Tags forecast
// @Produce json
// @Success 200 {object} services.ModelInfo
// @Router /model/info [get]
func (fc *ForecastController) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, fc.forecastService.Info())
}
