package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating the profile fails inside the registration transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithProfile creates a user and its profile atomically.
func (r *GormUserRepository) CreateWithProfile(user *models.User, profile *models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateUser, err)
		}

		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateProfile, err)
		}

		user.Profile = profile
		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Search returns at most limit users whose username, first name or last name
// contains query, ignoring case.
func (r *GormUserRepository) Search(query string, limit int) ([]models.User, error) {
	users := []models.User{}
	pattern := database.ContainsPattern(query)

	err := r.db.
		Where("LOWER(username) LIKE ? ESCAPE '!' OR LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!'", pattern, pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// List lists all users ordered by username
func (r *GormUserRepository) List() ([]models.User, error) {
	users := []models.User{}
	if err := r.db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FirstOrCreateProfile returns the profile of userID, creating an empty one for
// users that predate profiles.
func (r *GormUserRepository) FirstOrCreateProfile(userID uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where(models.Profile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile saves a profile
func (r *GormUserRepository) UpdateProfile(profile *models.Profile) error {
	return r.db.Save(profile).Error
}
