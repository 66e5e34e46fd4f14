package services

import (
	"testing"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) *UserService {
	t.Helper()
	db := openTestDB(t)
	return NewUserService(repository.NewUserRepository(db), testLogger())
}

func TestUserService(t *testing.T) {
	svc := newUserFixture(t)

	user := &models.User{
		Email:     "clinician@example.com",
		Password:  "strong-password",
		FirstName: "María",
		LastName:  "López",
		Role:      models.RoleClinician,
		Active:    true,
	}

	t.Run("Should create a user", func(t *testing.T) {
		require.NoError(t, svc.Create(user))
		assert.NotZero(t, user.ID)
	})

	t.Run("Should reject a duplicate email", func(t *testing.T) {
		err := svc.Create(&models.User{
			Email:    "clinician@example.com",
			Password: "another-password",
			Role:     models.RoleClinician,
		})
		assert.ErrorIs(t, err, utils.ErrAlreadyExists)
	})

	t.Run("Should authenticate valid credentials", func(t *testing.T) {
		authenticated, err := svc.Authenticate("clinician@example.com", "strong-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, authenticated.ID)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("clinician@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Should reject an unknown email", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "strong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Should change a password after verifying the current one", func(t *testing.T) {
		err := svc.ChangePassword(user.ID, "wrong-password", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		require.NoError(t, svc.ChangePassword(user.ID, "strong-password", "new-password"))

		_, err = svc.Authenticate("clinician@example.com", "new-password")
		assert.NoError(t, err)
	})
}
