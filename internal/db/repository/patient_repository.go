package repository

import (
	"github.com/glucotrack/backend/internal/db/models"
	"gorm.io/gorm"
)

// PatientRepository defines operations for managing patients
type PatientRepository interface {
	Repository
	Create(patient *models.Patient) error
	GetByID(id uint) (*models.Patient, error)
	GetByExternalID(externalID string) (*models.Patient, error)
	List(offset, limit int) ([]models.Patient, int64, error)
	ListByClinician(clinicianID uint, offset, limit int) ([]models.Patient, int64, error)
	Update(patient *models.Patient) error
	Delete(id uint) error
}

// patientRepository implements PatientRepository
type patientRepository struct {
	BaseRepository
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create adds a new patient to the database
func (r *patientRepository) Create(patient *models.Patient) error {
	var count int64
	if err := r.GetDB().Model(&models.Patient{}).Where("external_id = ?", patient.ExternalID).Count(&count).Error; err != nil {
		return r.handleError(err)
	}

	if count > 0 {
		return ErrConflict
	}

	err := r.GetDB().Create(patient).Error
	return r.handleError(err)
}

// GetByID retrieves a patient by ID
func (r *patientRepository) GetByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.GetDB().Where("id = ?", id).First(&patient).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return &patient, nil
}

// GetByExternalID retrieves a patient by their external identifier
func (r *patientRepository) GetByExternalID(externalID string) (*models.Patient, error) {
	var patient models.Patient
	err := r.GetDB().Where("external_id = ?", externalID).First(&patient).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return &patient, nil
}

// List retrieves a paginated list of patients
func (r *patientRepository) List(offset, limit int) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	if err := r.GetDB().Model(&models.Patient{}).Count(&total).Error; err != nil {
		return nil, 0, r.handleError(err)
	}

	err := r.GetDB().Offset(offset).Limit(limit).Order("id asc").Find(&patients).Error
	if err != nil {
		return nil, 0, r.handleError(err)
	}

	return patients, total, nil
}

// ListByClinician retrieves patients assigned to a clinician
func (r *patientRepository) ListByClinician(clinicianID uint, offset, limit int) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	query := r.GetDB().Model(&models.Patient{}).Where("clinician_id = ?", clinicianID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleError(err)
	}

	err := query.Offset(offset).Limit(limit).Order("id asc").Find(&patients).Error
	if err != nil {
		return nil, 0, r.handleError(err)
	}

	return patients, total, nil
}

// Update updates a patient's information
func (r *patientRepository) Update(patient *models.Patient) error {
	var existing models.Patient
	if err := r.GetDB().Where("id = ?", patient.ID).First(&existing).Error; err != nil {
		return r.handleError(err)
	}

	err := r.GetDB().Model(patient).Updates(map[string]interface{}{
		"first_name":     patient.FirstName,
		"last_name":      patient.LastName,
		"birth_date":     patient.BirthDate,
		"diabetes_type":  patient.DiabetesType,
		"diagnosis_year": patient.DiagnosisYear,
		"sensor_model":   patient.SensorModel,
		"clinician_id":   patient.ClinicianID,
	}).Error

	return r.handleError(err)
}

// Delete soft-deletes a patient
func (r *patientRepository) Delete(id uint) error {
	result := r.GetDB().Delete(&models.Patient{}, id)
	if result.Error != nil {
		return r.handleError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
