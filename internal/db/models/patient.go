package models

import (
	"time"

	"gorm.io/gorm"
)

// DiabetesType distinguishes the diagnosed diabetes variant
type DiabetesType string

const (
	// DiabetesType1 type 1 diabetes
	DiabetesType1 DiabetesType = "type1"
	// DiabetesType2 type 2 diabetes
	DiabetesType2 DiabetesType = "type2"
)

// Patient represents a monitored patient
type Patient struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ExternalID    string         `gorm:"uniqueIndex;not null" json:"external_id"`
	FirstName     string         `gorm:"not null" json:"first_name"`
	LastName      string         `gorm:"not null" json:"last_name"`
	BirthDate     time.Time      `json:"birth_date"`
	DiabetesType  DiabetesType   `gorm:"type:varchar(10);default:'type1'" json:"diabetes_type"`
	DiagnosisYear int            `json:"diagnosis_year"`
	SensorModel   string         `gorm:"type:varchar(100)" json:"sensor_model,omitempty"`
	ClinicianID   *uint          `gorm:"index" json:"clinician_id,omitempty"`
	Clinician     *User          `gorm:"foreignKey:ClinicianID" json:"clinician,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Patient
func (Patient) TableName() string {
	return "patients"
}
