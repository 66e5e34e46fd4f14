package repository

import (
	"time"

	"github.com/glucotrack/backend/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisRepository defines operations for persisted analysis results
type AnalysisRepository interface {
	Repository
	UpsertDailyMetrics(record *models.DailyMetricsRecord) error
	GetDailyMetrics(patientID uint, date time.Time) (*models.DailyMetricsRecord, error)
	GetDailyMetricsRange(patientID uint, from, to time.Time) ([]models.DailyMetricsRecord, error)
	CreateClusterAssignment(record *models.ClusterAssignmentRecord) error
	GetLatestClusterAssignment(patientID uint) (*models.ClusterAssignmentRecord, error)
	GetClusterAssignmentHistory(patientID uint, limit int) ([]models.ClusterAssignmentRecord, error)
}

// analysisRepository implements AnalysisRepository
type analysisRepository struct {
	BaseRepository
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// UpsertDailyMetrics stores or refreshes the metrics for one patient-day
func (a *analysisRepository) UpsertDailyMetrics(record *models.DailyMetricsRecord) error {
	err := a.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "patient_id"}},
		UpdateAll: true,
	}).Create(record).Error
	return a.handleError(err)
}

// GetDailyMetrics retrieves the metrics for one patient-day
func (a *analysisRepository) GetDailyMetrics(patientID uint, date time.Time) (*models.DailyMetricsRecord, error) {
	var record models.DailyMetricsRecord
	err := a.GetDB().
		Where("patient_id = ? AND date = ?", patientID, truncateToDay(date)).
		First(&record).Error
	if err != nil {
		return nil, a.handleError(err)
	}
	return &record, nil
}

// GetDailyMetricsRange retrieves metrics inside [from, to], oldest first
func (a *analysisRepository) GetDailyMetricsRange(patientID uint, from, to time.Time) ([]models.DailyMetricsRecord, error) {
	var records []models.DailyMetricsRecord
	err := a.GetDB().
		Where("patient_id = ? AND date >= ? AND date <= ?",
			patientID, truncateToDay(from), truncateToDay(to)).
		Order("date asc").
		Find(&records).Error
	if err != nil {
		return nil, a.handleError(err)
	}
	return records, nil
}

// truncateToDay normalizes a timestamp to midnight UTC so date comparisons
// bind the same representation the records were stored with.
func truncateToDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// CreateClusterAssignment appends a classification to the patient's history
func (a *analysisRepository) CreateClusterAssignment(record *models.ClusterAssignmentRecord) error {
	err := a.GetDB().Create(record).Error
	return a.handleError(err)
}

// GetLatestClusterAssignment retrieves the most recent classification
func (a *analysisRepository) GetLatestClusterAssignment(patientID uint) (*models.ClusterAssignmentRecord, error) {
	var record models.ClusterAssignmentRecord
	err := a.GetDB().
		Where("patient_id = ?", patientID).
		Order("assigned_at desc").
		First(&record).Error
	if err != nil {
		return nil, a.handleError(err)
	}
	return &record, nil
}

// GetClusterAssignmentHistory retrieves classifications, newest first
func (a *analysisRepository) GetClusterAssignmentHistory(patientID uint, limit int) ([]models.ClusterAssignmentRecord, error) {
	var records []models.ClusterAssignmentRecord
	err := a.GetDB().
		Where("patient_id = ?", patientID).
		Order("assigned_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, a.handleError(err)
	}
	return records, nil
}
