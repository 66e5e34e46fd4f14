package services

import (
	"encoding/json"
	"errors"
	"fmt"

	confluent "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/kafka"
	"github.com/glucotrack/backend/internal/metrics"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// CacheInvalidator drops a patient's cached analysis reports
type CacheInvalidator interface {
	Invalidate(patientID uint) error
}

// IngestService stores incoming CGM readings from the API and from the
// readings topic.
type IngestService struct {
	readings    repository.ReadingRepository
	patients    repository.PatientRepository
	invalidator CacheInvalidator
	logger      *utils.Logger
}

// NewIngestService creates a new ingest service. The invalidator may be nil.
func NewIngestService(
	readings repository.ReadingRepository,
	patients repository.PatientRepository,
	invalidator CacheInvalidator,
	logger *utils.Logger,
) *IngestService {
	return &IngestService{
		readings:    readings,
		patients:    patients,
		invalidator: invalidator,
		logger:      logger.Named("ingest_service"),
	}
}

// IngestForPatient stores a batch of readings for a known patient and
// returns the number accepted. Implausible values are dropped.
func (s *IngestService) IngestForPatient(patientID uint, readings []models.GlucoseReading) (int, error) {
	for i := range readings {
		readings[i].PatientID = patientID
	}

	accepted, err := s.readings.CreateBatch(readings)
	if err != nil {
		return 0, err
	}

	rejected := len(readings) - accepted
	metrics.ReadingsIngested.Add(float64(accepted))
	metrics.ReadingsRejected.Add(float64(rejected))

	if accepted > 0 {
		s.invalidate(patientID)
	}

	s.logger.Debug("Ingested reading batch",
		zap.Uint("patient_id", patientID),
		zap.Int("accepted", accepted),
		zap.Int("rejected", rejected),
	)

	return accepted, nil
}

// IngestEvent stores one reading arriving from the readings topic,
// resolving the patient by external identifier.
func (s *IngestService) IngestEvent(event *kafka.ReadingEvent) error {
	patient, err := s.patients.GetByExternalID(event.PatientExternalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("unknown patient %q: %w", event.PatientExternalID, utils.ErrNotFound)
		}
		return err
	}

	reading := &models.GlucoseReading{
		Time:              event.Timestamp.UTC(),
		PatientID:         patient.ID,
		Glucose:           event.Glucose,
		Carbs:             event.Carbs,
		Bolus:             event.Bolus,
		Basal:             event.Basal,
		ExerciseIntensity: event.ExerciseIntensity,
		ExerciseDuration:  event.ExerciseDuration,
		Source:            event.Source,
	}

	if err := s.readings.Create(reading); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			metrics.ReadingsRejected.Inc()
			return fmt.Errorf("reading for %q: %w", event.PatientExternalID, utils.ErrValidation)
		}
		return err
	}

	metrics.ReadingsIngested.Inc()
	s.invalidate(patient.ID)
	return nil
}

// HandleMessage adapts IngestEvent to the Kafka consumer handler signature
func (s *IngestService) HandleMessage(msg *confluent.Message) error {
	var event kafka.ReadingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("malformed reading event: %w", err)
	}
	return s.IngestEvent(&event)
}

// invalidate drops the patient's cached reports after new data arrives
func (s *IngestService) invalidate(patientID uint) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(patientID); err != nil {
		s.logger.Warn("Failed to invalidate analysis cache",
			zap.Uint("patient_id", patientID),
			zap.Error(err),
		)
	}
}
