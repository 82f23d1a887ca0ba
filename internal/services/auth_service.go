package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AuthService handles registration and credential checks.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the information needed to create an account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Register creates a user and its profile in one transaction.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, newValidationError("password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", constants.MinPasswordLength))
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, errUsernameTaken()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.CreateWithProfile(user, &models.Profile{}); err != nil {
		// A concurrent registration can win the race past the lookup above.
		if errors.Is(err, repository.ErrCreateUser) && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errUsernameTaken()
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return requiredField("username")
	case len(username) < constants.MinUsernameLength:
		return newValidationError("username",
			fmt.Sprintf("Ensure this field has at least %d characters.", constants.MinUsernameLength))
	case len(username) > constants.MaxUsernameLength:
		return newValidationError("username",
			fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxUsernameLength))
	case !usernamePattern.MatchString(username):
		return newValidationError("username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

func errUsernameTaken() *ValidationError {
	return newValidationError("username", "A user with that username already exists.")
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
