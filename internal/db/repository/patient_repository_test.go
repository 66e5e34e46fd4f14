package repository_test

import (
	"testing"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientRepository(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewPatientRepository(db)

	t.Run("Should create a patient with valid data", func(t *testing.T) {
		patient := &models.Patient{
			ExternalID:   "PAT-100",
			FirstName:    "Luis",
			LastName:     "Martínez",
			DiabetesType: models.DiabetesType1,
		}

		err := repo.Create(patient)
		assert.NoError(t, err)
		assert.NotZero(t, patient.ID)
	})

	t.Run("Should reject a duplicate external ID", func(t *testing.T) {
		err := repo.Create(&models.Patient{
			ExternalID: "PAT-100",
			FirstName:  "Otro",
			LastName:   "Paciente",
		})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("Should get a patient by external ID", func(t *testing.T) {
		patient, err := repo.GetByExternalID("PAT-100")
		require.NoError(t, err)
		assert.Equal(t, "Luis", patient.FirstName)
	})

	t.Run("Should return not found for unknown patients", func(t *testing.T) {
		_, err := repo.GetByID(9999)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.GetByExternalID("PAT-MISSING")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Should list patients with a total count", func(t *testing.T) {
		require.NoError(t, repo.Create(&models.Patient{
			ExternalID: "PAT-101",
			FirstName:  "Carmen",
			LastName:   "Ruiz",
		}))

		patients, total, err := repo.List(0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, patients, 2)
	})

	t.Run("Should filter patients by clinician", func(t *testing.T) {
		clinician := &models.User{
			Email:    "dr@example.com",
			Password: "secret-password",
			Role:     models.RoleClinician,
		}
		require.NoError(t, db.Create(clinician).Error)

		patient, err := repo.GetByExternalID("PAT-101")
		require.NoError(t, err)
		patient.ClinicianID = &clinician.ID
		require.NoError(t, repo.Update(patient))

		assigned, total, err := repo.ListByClinician(clinician.ID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, assigned, 1)
		assert.Equal(t, "PAT-101", assigned[0].ExternalID)
	})

	t.Run("Should soft-delete a patient", func(t *testing.T) {
		patient, err := repo.GetByExternalID("PAT-100")
		require.NoError(t, err)

		require.NoError(t, repo.Delete(patient.ID))

		_, err = repo.GetByID(patient.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(patient.ID), repository.ErrNotFound)
	})
}
