package services

import (
	"errors"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// PatientService handles patient registry business logic
type PatientService struct {
	patients repository.PatientRepository
	logger   *utils.Logger
}

// NewPatientService creates a new patient service
func NewPatientService(patients repository.PatientRepository, logger *utils.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		logger:   logger.Named("patient_service"),
	}
}

// Create registers a new patient
func (s *PatientService) Create(patient *models.Patient) error {
	if err := s.patients.Create(patient); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return utils.ErrAlreadyExists
		}
		s.logger.Error("Database error creating patient", zap.Error(err))
		return err
	}

	s.logger.Info("Patient registered",
		zap.Uint("id", patient.ID),
		zap.String("external_id", patient.ExternalID),
	)
	return nil
}

// GetByID retrieves a patient by ID
func (s *PatientService) GetByID(id uint) (*models.Patient, error) {
	patient, err := s.patients.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return patient, nil
}

// GetByExternalID retrieves a patient by external identifier
func (s *PatientService) GetByExternalID(externalID string) (*models.Patient, error) {
	patient, err := s.patients.GetByExternalID(externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return patient, nil
}

// List returns a paginated list of patients
func (s *PatientService) List(page, limit int) ([]models.Patient, int64, error) {
	offset := (page - 1) * limit
	return s.patients.List(offset, limit)
}

// ListByClinician returns a paginated list of a clinician's patients
func (s *PatientService) ListByClinician(clinicianID uint, page, limit int) ([]models.Patient, int64, error) {
	offset := (page - 1) * limit
	return s.patients.ListByClinician(clinicianID, offset, limit)
}

// Update updates a patient's information
func (s *PatientService) Update(patient *models.Patient) error {
	if err := s.patients.Update(patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.ErrNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return utils.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a patient from the registry
func (s *PatientService) Delete(id uint) error {
	if err := s.patients.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	return nil
}
