package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// UserService covers profiles and user lookup.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreateProfile returns the user with its profile, creating an empty
// profile for accounts that do not have one yet. Calling it repeatedly never
// creates a second profile.
func (s *UserService) GetOrCreateProfile(userID uint64) (*models.User, *models.Profile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	profile, err := s.userRepo.FirstOrCreateProfile(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, profile, nil
}

// UpdateProfileInput holds the profile fields a user may change. Nil fields
// are left as they are.
type UpdateProfileInput struct {
	UserID     uint64
	Bio        *string
	ProfilePic *string
	Position   *string
}

// UpdateProfile updates the caller's own profile.
func (s *UserService) UpdateProfile(input UpdateProfileInput) (*models.User, *models.Profile, error) {
	user, profile, err := s.GetOrCreateProfile(input.UserID)
	if err != nil {
		return nil, nil, err
	}

	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.ProfilePic != nil {
		profile.ProfilePic = strings.TrimSpace(*input.ProfilePic)
	}
	if input.Position != nil {
		position := strings.TrimSpace(*input.Position)
		if len(position) > 100 {
			return nil, nil, newValidationError("position", "Ensure this field has no more than 100 characters.")
		}
		profile.Position = position
	}

	if err := s.userRepo.UpdateProfile(profile); err != nil {
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, profile, nil
}

// SearchUsers matches query against username, first and last name. A blank
// query returns no users rather than all of them.
func (s *UserService) SearchUsers(query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	users, err := s.userRepo.Search(query, constants.UserSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// ListUsers returns every user ordered by username.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
