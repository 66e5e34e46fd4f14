package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

// testLogger returns a silent logger for service tests
func testLogger() *utils.Logger {
	return &utils.Logger{Logger: zap.NewNop()}
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

// seedReadings stores `count` readings at 5-minute intervals starting at
// `start`, all with the given glucose value in mmol/L.
func seedReadings(t *testing.T, repo repository.ReadingRepository, patientID uint, start time.Time, count int, glucose float64) {
	t.Helper()

	readings := make([]models.GlucoseReading, count)
	for i := range readings {
		readings[i] = models.GlucoseReading{
			Time:      start.Add(time.Duration(i) * 5 * time.Minute),
			PatientID: patientID,
			Glucose:   glucose,
		}
	}

	accepted, err := repo.CreateBatch(readings)
	require.NoError(t, err)
	require.Equal(t, count, accepted)
}

// memCache is an in-memory ReportCache and CacheInvalidator for tests
type memCache struct {
	data        map[string][]byte
	invalidated []uint
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) SetWithTTL(key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	return nil
}

func (c *memCache) Get(key string, dest interface{}) error {
	data, ok := c.data[key]
	if !ok {
		return fmt.Errorf("cache miss for %s", key)
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) Invalidate(patientID uint) error {
	c.invalidated = append(c.invalidated, patientID)
	for key := range c.data {
		delete(c.data, key)
	}
	return nil
}
