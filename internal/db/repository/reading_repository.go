package repository

import (
	"time"

	"github.com/glucotrack/backend/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadingRepository defines operations for managing glucose readings
type ReadingRepository interface {
	Repository
	Create(reading *models.GlucoseReading) error
	CreateBatch(readings []models.GlucoseReading) (int, error)
	GetRange(patientID uint, from, to time.Time) ([]models.GlucoseReading, error)
	GetLatest(patientID uint, n int) ([]models.GlucoseReading, error)
	CountByPatient(patientID uint) (int64, error)
}

// readingRepository implements ReadingRepository
type readingRepository struct {
	BaseRepository
}

// NewReadingRepository creates a new glucose reading repository
func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create stores a single reading, replacing any existing point at the
// same timestamp. CGM uploads routinely resend overlapping windows.
func (r *readingRepository) Create(reading *models.GlucoseReading) error {
	if err := reading.Validate(); err != nil {
		return ErrInvalidInput
	}

	err := r.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "time"}, {Name: "patient_id"}},
		UpdateAll: true,
	}).Create(reading).Error

	return r.handleError(err)
}

// CreateBatch stores a batch of readings, skipping implausible values.
// Returns the number of readings accepted.
func (r *readingRepository) CreateBatch(readings []models.GlucoseReading) (int, error) {
	valid := make([]models.GlucoseReading, 0, len(readings))
	for i := range readings {
		if readings[i].Validate() == nil {
			valid = append(valid, readings[i])
		}
	}

	if len(valid) == 0 {
		return 0, nil
	}

	err := r.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "time"}, {Name: "patient_id"}},
		UpdateAll: true,
	}).CreateInBatches(valid, 500).Error
	if err != nil {
		return 0, r.handleError(err)
	}

	return len(valid), nil
}

// GetRange retrieves readings for a patient inside [from, to), ordered by time
func (r *readingRepository) GetRange(patientID uint, from, to time.Time) ([]models.GlucoseReading, error) {
	var readings []models.GlucoseReading
	err := r.GetDB().
		Where("patient_id = ? AND time >= ? AND time < ?", patientID, from, to).
		Order("time asc").
		Find(&readings).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return readings, nil
}

// GetLatest retrieves the n most recent readings, oldest first
func (r *readingRepository) GetLatest(patientID uint, n int) ([]models.GlucoseReading, error) {
	var readings []models.GlucoseReading
	err := r.GetDB().
		Where("patient_id = ?", patientID).
		Order("time desc").
		Limit(n).
		Find(&readings).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}

// CountByPatient returns the total number of readings for a patient
func (r *readingRepository) CountByPatient(patientID uint) (int64, error) {
	var total int64
	err := r.GetDB().Model(&models.GlucoseReading{}).Where("patient_id = ?", patientID).Count(&total).Error
	if err != nil {
		return 0, r.handleError(err)
	}
	return total, nil
}
