package models

import (
	"errors"
	"time"
)

// Glucose readings are stored in mmol/L. Physiologically plausible CGM
// values fall inside this band; anything outside is a sensor artifact.
const (
	MinGlucoseMmol = 2.0
	MaxGlucoseMmol = 25.0
)

// ErrGlucoseOutOfRange is returned when a reading fails plausibility checks
var ErrGlucoseOutOfRange = errors.New("glucose value outside plausible range")

// GlucoseReading represents a single CGM data point
type GlucoseReading struct {
	Time              time.Time `gorm:"primaryKey;not null" json:"time"`
	PatientID         uint      `gorm:"primaryKey;not null;index" json:"patient_id"`
	Glucose           float64   `gorm:"not null" json:"glucose"`
	Carbs             float64   `json:"carbs,omitempty"`
	Bolus             float64   `json:"bolus,omitempty"`
	Basal             float64   `json:"basal,omitempty"`
	ExerciseIntensity float64   `json:"exercise_intensity,omitempty"`
	ExerciseDuration  float64   `json:"exercise_duration,omitempty"`
	Source            string    `gorm:"type:varchar(50)" json:"source,omitempty"`
}

// TableName overrides the table name for GlucoseReading
func (GlucoseReading) TableName() string {
	return "glucose_readings"
}

// Validate checks the reading for plausibility
func (r *GlucoseReading) Validate() error {
	if r.Glucose < MinGlucoseMmol || r.Glucose > MaxGlucoseMmol {
		return ErrGlucoseOutOfRange
	}
	return nil
}

// DailyMetricsRecord stores the computed metrics for one patient-day
type DailyMetricsRecord struct {
	Date        time.Time `gorm:"type:date;primaryKey;not null" json:"date"`
	PatientID   uint      `gorm:"primaryKey;not null;index" json:"patient_id"`
	MeanGlucose float64   `json:"mean_glucose"`
	Median      float64   `json:"median_glucose"`
	StdDev      float64   `json:"std_glucose"`
	MinGlucose  float64   `json:"min_glucose"`
	MaxGlucose  float64   `json:"max_glucose"`
	RangeWidth  float64   `json:"glucose_range"`
	CV          float64   `json:"cv"`
	TIR         float64   `json:"tir"`
	TBR         float64   `json:"tbr"`
	TBRSevere   float64   `json:"tbr_severe"`
	TAR         float64   `json:"tar"`
	TARSevere   float64   `json:"tar_severe"`
	GMI         float64   `json:"gmi"`
	NReadings   int       `json:"n_readings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for DailyMetricsRecord
func (DailyMetricsRecord) TableName() string {
	return "daily_metrics"
}

// ClusterAssignmentRecord stores one glycemic profile classification.
// Assignments accumulate over time so profile drift stays visible.
type ClusterAssignmentRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PatientID   uint      `gorm:"not null;index" json:"patient_id"`
	ClusterID   int       `gorm:"not null" json:"cluster_id"`
	ClusterName string    `gorm:"type:varchar(100)" json:"cluster_name"`
	Confidence  float64   `json:"confidence"`
	Fallback    bool      `json:"fallback"`
	WindowDays  int       `json:"window_days"`
	AssignedAt  time.Time `gorm:"not null;index" json:"assigned_at"`
}

// TableName overrides the table name for ClusterAssignmentRecord
func (ClusterAssignmentRecord) TableName() string {
	return "cluster_assignments"
}
