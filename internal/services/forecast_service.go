package services

import (
	"time"

	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/forecast"
	"github.com/glucotrack/backend/internal/kafka"
	"github.com/glucotrack/backend/internal/metrics"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// mmol/L to mg/dL; the forecaster and alert thresholds work in mg/dL
const mmolToMgdl = 18.0182

// AlertPublisher abstracts the alert event sink
type AlertPublisher interface {
	PublishAlert(event *kafka.AlertEvent) error
}

// ModelInfo describes the loaded forecasting model
type ModelInfo struct {
	Ready       bool   `json:"ready"`
	WindowSize  int    `json:"window_size"`
	MaxSteps    int    `json:"max_steps"`
	StepMinutes int    `json:"step_minutes"`
	Features    int    `json:"features"`
	Detail      string `json:"detail,omitempty"`
}

// ForecastService produces glucose forecasts from stored CGM history
// and publishes predictive alerts.
type ForecastService struct {
	readings   repository.ReadingRepository
	patients   repository.PatientRepository
	forecaster *forecast.Forecaster
	ready      bool
	publisher  AlertPublisher
	logger     *utils.Logger
}

// NewForecastService creates a new forecast service. The forecaster may be
// built without a model, in which case requests fail with a clear error.
func NewForecastService(
	readings repository.ReadingRepository,
	patients repository.PatientRepository,
	forecaster *forecast.Forecaster,
	ready bool,
	publisher AlertPublisher,
	logger *utils.Logger,
) *ForecastService {
	return &ForecastService{
		readings:   readings,
		patients:   patients,
		forecaster: forecaster,
		ready:      ready,
		publisher:  publisher,
		logger:     logger.Named("forecast_service"),
	}
}

// PredictGlucose forecasts nSteps future glucose values for a patient from
// their most recent readings, applying the planned future inputs.
func (s *ForecastService) PredictGlucose(patientID uint, plan []forecast.PlanStep, nSteps int) (*forecast.Result, error) {
	stored, err := s.readings.GetLatest(patientID, forecast.WindowSize)
	if err != nil {
		return nil, err
	}
	if len(stored) < forecast.WindowSize {
		return nil, forecast.ErrInvalidHistoryLength
	}

	history := make([]forecast.Reading, len(stored))
	for i, r := range stored {
		history[i] = forecast.Reading{
			Timestamp:         r.Time,
			Glucose:           r.Glucose * mmolToMgdl,
			Carbs:             r.Carbs,
			Bolus:             r.Bolus,
			ExerciseIntensity: r.ExerciseIntensity,
			ExerciseDuration:  r.ExerciseDuration,
		}
	}

	start := time.Now()
	result, err := s.forecaster.Forecast(history, plan, nSteps)
	if err != nil {
		return nil, err
	}
	metrics.ForecastLatency.Observe(time.Since(start).Seconds())
	metrics.ForecastsGenerated.Inc()

	s.publishAlerts(patientID, result.Alerts)

	return result, nil
}

// publishAlerts emits one event per predicted excursion. Publish failures
// are logged, not propagated: the forecast itself already succeeded.
func (s *ForecastService) publishAlerts(patientID uint, alerts []forecast.Alert) {
	if s.publisher == nil || len(alerts) == 0 {
		return
	}

	externalID := s.resolveExternalID(patientID)
	now := time.Now().UTC()

	for _, alert := range alerts {
		metrics.AlertsEmitted.WithLabelValues(alert.Severity).Inc()

		event := &kafka.AlertEvent{
			PatientExternalID: externalID,
			Type:              alert.Type,
			Severity:          alert.Severity,
			Glucose:           alert.Glucose,
			OffsetMinutes:     alert.OffsetMinutes,
			Message:           alert.Message,
			EmittedAt:         now,
		}

		if err := s.publisher.PublishAlert(event); err != nil {
			s.logger.Error("Failed to publish alert event",
				zap.Uint("patient_id", patientID),
				zap.String("severity", alert.Severity),
				zap.Error(err),
			)
		}
	}
}

// resolveExternalID looks up the patient's external identifier for events
func (s *ForecastService) resolveExternalID(patientID uint) string {
	if s.patients == nil {
		return ""
	}
	patient, err := s.patients.GetByID(patientID)
	if err != nil {
		s.logger.Warn("Failed to resolve patient for alert event",
			zap.Uint("patient_id", patientID),
			zap.Error(err),
		)
		return ""
	}
	return patient.ExternalID
}

// Info describes the model behind the forecast endpoint
func (s *ForecastService) Info() ModelInfo {
	info := ModelInfo{
		Ready:       s.ready,
		WindowSize:  forecast.WindowSize,
		MaxSteps:    forecast.MaxSteps,
		StepMinutes: int(forecast.StepInterval / time.Minute),
		Features:    forecast.NumFeatures,
	}
	if !s.ready {
		info.Detail = "sequence model artifact not loaded"
	}
	return info
}
