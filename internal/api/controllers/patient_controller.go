package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/services"
	"github.com/glucotrack/backend/internal/utils"
)

// CreatePatientRequest represents the patient registration body
type CreatePatientRequest struct {
	ExternalID    string `json:"external_id" binding:"required"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	BirthDate     string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	DiabetesType  string `json:"diabetes_type" binding:"omitempty,oneof=type1 type2"`
	DiagnosisYear int    `json:"diagnosis_year" binding:"omitempty,gte=1900"`
	SensorModel   string `json:"sensor_model"`
}

// UpdatePatientRequest represents the patient update body
type UpdatePatientRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	BirthDate     string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	DiabetesType  string `json:"diabetes_type" binding:"omitempty,oneof=type1 type2"`
	DiagnosisYear int    `json:"diagnosis_year" binding:"omitempty,gte=1900"`
	SensorModel   string `json:"sensor_model"`
}

// ReadingRequest represents one CGM reading in an ingest request.
// Glucose is in mmol/L.
type ReadingRequest struct {
	Timestamp         time.Time `json:"timestamp" binding:"required"`
	Glucose           float64   `json:"glucose" binding:"required,gt=0"`
	Carbs             float64   `json:"carbs" binding:"omitempty,gte=0"`
	Bolus             float64   `json:"bolus" binding:"omitempty,gte=0"`
	Basal             float64   `json:"basal" binding:"omitempty,gte=0"`
	ExerciseIntensity float64   `json:"exercise_intensity" binding:"omitempty,gte=0,lte=10"`
	ExerciseDuration  float64   `json:"exercise_duration" binding:"omitempty,gte=0"`
	Source            string    `json:"source"`
}

// IngestReadingsRequest represents a batch ingest body
type IngestReadingsRequest struct {
	Readings []ReadingRequest `json:"readings" binding:"required,min=1,dive"`
}

// IngestReadingsResponse reports how many readings were accepted
type IngestReadingsResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// PatientController handles patient registry endpoints
type PatientController struct {
	patientService *services.PatientService
	ingestService  *services.IngestService
	logger         *utils.Logger
}

// NewPatientController creates a new patient controller
func NewPatientController(
	patientService *services.PatientService,
	ingestService *services.IngestService,
	logger *utils.Logger,
) *PatientController {
	return &PatientController{
		patientService: patientService,
		ingestService:  ingestService,
		logger:         logger.Named("patient_controller"),
	}
}

// RegisterRoutes registers the controller's routes with the router group
func (pc *PatientController) RegisterRoutes(router *gin.RouterGroup) {
	patients := router.Group("/patients")
	{
		patients.POST("", pc.Create)
		patients.GET("", pc.List)
		patients.GET("/:id", pc.Get)
		patients.PUT("/:id", pc.Update)
		patients.DELETE("/:id", pc.Delete)
		patients.POST("/:id/readings", pc.IngestReadings)
	}
}

// Create registers a new patient
// @Summary Register patient
// @Tags patients
// @Accept json
// @Produce json
// @Param patient body CreatePatientRequest true "Patient information"
// @Success 201 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /patients [post]
func (pc *PatientController) Create(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleValidationErrors(c, err)
		return
	}

	patient := &models.Patient{
		ExternalID:    req.ExternalID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DiabetesType:  models.DiabetesType(req.DiabetesType),
		DiagnosisYear: req.DiagnosisYear,
		SensorModel:   req.SensorModel,
	}
	if patient.DiabetesType == "" {
		patient.DiabetesType = models.DiabetesType1
	}
	if req.BirthDate != "" {
		patient.BirthDate, _ = time.Parse("2006-01-02", req.BirthDate)
	}

	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			patient.ClinicianID = &id
		}
	}

	if err := pc.patientService.Create(patient); err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.JSON(http.StatusCreated, patient)
}

// List returns a paginated list of patients
// @Summary List patients
// @Tags patients
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Router /patients [get]
func (pc *PatientController) List(c *gin.Context) {
	pagination := utils.GetPaginationFromContext(c)

	patients, total, err := pc.patientService.List(pagination.Page, pagination.Limit)
	if err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.JSON(http.StatusOK, utils.NewPaginatedResponse(patients, pagination, total))
}

// Get returns one patient
// @Summary Get patient
// @Tags patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} models.Patient
// @Failure 404 {object} utils.ErrorResponse
// @Router /patients/{id} [get]
func (pc *PatientController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	patient, err := pc.patientService.GetByID(id)
	if err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.JSON(http.StatusOK, patient)
}

// Update updates a patient's information
// @Summary Update patient
// @Tags patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param patient body UpdatePatientRequest true "Patient information"
// @Success 200 {object} models.Patient
// @Failure 404 {object} utils.ErrorResponse
// @Router /patients/{id} [put]
func (pc *PatientController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleValidationErrors(c, err)
		return
	}

	patient, err := pc.patientService.GetByID(id)
	if err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.DiagnosisYear = req.DiagnosisYear
	patient.SensorModel = req.SensorModel
	if req.DiabetesType != "" {
		patient.DiabetesType = models.DiabetesType(req.DiabetesType)
	}
	if req.BirthDate != "" {
		patient.BirthDate, _ = time.Parse("2006-01-02", req.BirthDate)
	}

	if err := pc.patientService.Update(patient); err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.JSON(http.StatusOK, patient)
}

// Delete removes a patient from the registry
// @Summary Delete patient
// @Tags patients
// @Param id path int true "Patient ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /patients/{id} [delete]
func (pc *PatientController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := pc.patientService.Delete(id); err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// IngestReadings stores a batch of CGM readings for a patient
// @Summary Ingest readings
// @Tags patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param readings body IngestReadingsRequest true "CGM readings (mmol/L)"
// @Success 202 {object} IngestReadingsResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /patients/{id}/readings [post]
func (pc *PatientController) IngestReadings(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := pc.patientService.GetByID(id); err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	var req IngestReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleValidationErrors(c, err)
		return
	}

	readings := make([]models.GlucoseReading, len(req.Readings))
	for i, r := range req.Readings {
		readings[i] = models.GlucoseReading{
			Time:              r.Timestamp.UTC(),
			Glucose:           r.Glucose,
			Carbs:             r.Carbs,
			Bolus:             r.Bolus,
			Basal:             r.Basal,
			ExerciseIntensity: r.ExerciseIntensity,
			ExerciseDuration:  r.ExerciseDuration,
			Source:            r.Source,
		}
	}

	accepted, err := pc.ingestService.IngestForPatient(id, readings)
	if err != nil {
		utils.HandleError(c, err, pc.logger)
		return
	}

	c.JSON(http.StatusAccepted, IngestReadingsResponse{
		Accepted: accepted,
		Rejected: len(readings) - accepted,
	})
}

// parseIDParam parses the :id path parameter, writing a 400 on failure
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return 0, false
	}
	return uint(id), true
}
