package services

import (
	"errors"

	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for unknown users or wrong passwords
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService handles user-related business logic
type UserService struct {
	users  repository.UserRepository
	logger *utils.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, logger *utils.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.Named("user_service"),
	}
}

// Authenticate verifies user credentials and returns the user
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Database error during authentication", zap.Error(err))
		return nil, err
	}

	if !user.Active || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		s.logger.Warn("Failed to update last login", zap.Uint("id", user.ID), zap.Error(err))
	}

	return user, nil
}

// Create adds a new user
func (s *UserService) Create(user *models.User) error {
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return utils.ErrAlreadyExists
		}
		s.logger.Error("Database error creating user", zap.Error(err))
		return err
	}
	return nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *UserService) ChangePassword(id uint, currentPassword, newPassword string) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if !user.CheckPassword(currentPassword) {
		return ErrInvalidCredentials
	}

	return s.users.ChangePassword(id, newPassword)
}
