package repository_test

import (
	"fmt"
	"testing"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an isolated in-memory SQLite database with the
// application schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.GlucoseReading{},
		&models.DailyMetricsRecord{},
		&models.ClusterAssignmentRecord{},
	)
	require.NoError(t, err, "Failed to migrate schema")

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// seedPatient inserts a patient and returns it
func seedPatient(t *testing.T, db *gorm.DB, externalID string) *models.Patient {
	t.Helper()

	patient := &models.Patient{
		ExternalID:   externalID,
		FirstName:    "Ana",
		LastName:     "García",
		DiabetesType: models.DiabetesType1,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}
