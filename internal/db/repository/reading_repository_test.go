package repository_test

import (
	"testing"
	"time"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingRepository(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewReadingRepository(db)
	patient := seedPatient(t, db, "PAT-001")

	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("Should store a valid reading", func(t *testing.T) {
		err := repo.Create(&models.GlucoseReading{
			Time:      base,
			PatientID: patient.ID,
			Glucose:   6.2,
		})
		assert.NoError(t, err)

		total, err := repo.CountByPatient(patient.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("Should reject implausible glucose values", func(t *testing.T) {
		err := repo.Create(&models.GlucoseReading{
			Time:      base.Add(5 * time.Minute),
			PatientID: patient.ID,
			Glucose:   40.0,
		})
		assert.ErrorIs(t, err, repository.ErrInvalidInput)

		err = repo.Create(&models.GlucoseReading{
			Time:      base.Add(5 * time.Minute),
			PatientID: patient.ID,
			Glucose:   1.5,
		})
		assert.ErrorIs(t, err, repository.ErrInvalidInput)
	})

	t.Run("Should replace a resent reading instead of duplicating it", func(t *testing.T) {
		err := repo.Create(&models.GlucoseReading{
			Time:      base,
			PatientID: patient.ID,
			Glucose:   6.5,
		})
		require.NoError(t, err)

		readings, err := repo.GetRange(patient.ID, base, base.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, readings, 1)
		assert.Equal(t, 6.5, readings[0].Glucose)
	})

	t.Run("Should drop invalid readings from a batch and keep the rest", func(t *testing.T) {
		batch := []models.GlucoseReading{
			{Time: base.Add(10 * time.Minute), PatientID: patient.ID, Glucose: 5.8},
			{Time: base.Add(15 * time.Minute), PatientID: patient.ID, Glucose: 30.0},
			{Time: base.Add(20 * time.Minute), PatientID: patient.ID, Glucose: 7.1},
		}

		accepted, err := repo.CreateBatch(batch)
		require.NoError(t, err)
		assert.Equal(t, 2, accepted)
	})

	t.Run("Should return latest readings oldest first", func(t *testing.T) {
		latest, err := repo.GetLatest(patient.ID, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.True(t, latest[0].Time.Before(latest[1].Time))
		assert.Equal(t, 7.1, latest[1].Glucose)
	})

	t.Run("Should bound range queries", func(t *testing.T) {
		readings, err := repo.GetRange(patient.ID, base, base.Add(11*time.Minute))
		require.NoError(t, err)
		assert.Len(t, readings, 2)
	})
}
