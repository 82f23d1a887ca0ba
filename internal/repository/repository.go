package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
)

// TaskRepository defines the interface for task and comment data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks visible to filter.UserID
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves a task's own columns
	Update(task *models.Task) error

	// Delete deletes a task and its comments
	Delete(id uint64) error

	// ListComments lists the comments of a task, newest first
	ListComments(taskID uint64) ([]models.Comment, error)

	// CreateComment creates a new comment
	CreateComment(comment *models.Comment) error
}

// TaskFilter holds filtering options for listing tasks. UserID is mandatory:
// results never leave the teams that user belongs to.
type TaskFilter struct {
	UserID       uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	TeamID       *uint64
	AssignedToID *uint64
	Search       string
	Ordering     []string
	Pagination   utils.PaginationParams
}

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// CreateWithAdmin creates a team and its first admin membership atomically
	CreateWithAdmin(team *models.Team, admin *models.TeamMembership) error

	// FindByID finds a team by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Team, error)

	// Update saves a team's own columns
	Update(team *models.Team) error

	// Delete deletes a team with its memberships, tasks and comments
	Delete(id uint64) error

	// ListForUser lists the teams a user is a member of
	ListForUser(userID uint64) ([]models.Team, error)

	// AddMember creates a membership
	AddMember(member *models.TeamMembership) error

	// FindMember finds a specific team membership
	FindMember(teamID, userID uint64) (*models.TeamMembership, error)

	// ListMembers lists all memberships of a team
	ListMembers(teamID uint64) ([]models.TeamMembership, error)

	// CountAdmins counts the admin memberships of a team
	CountAdmins(teamID uint64) (int64, error)

	// RemoveMember deletes a membership on behalf of actorID, who must be an
	// admin, unless it is the team's last admin
	RemoveMember(teamID, actorID, userID uint64) error
}

// UserRepository defines the interface for user and profile data access
type UserRepository interface {
	// CreateWithProfile creates a user and its profile within a single transaction
	CreateWithProfile(user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Search matches username, first and last name case-insensitively
	Search(query string, limit int) ([]models.User, error)

	// List lists all users ordered by username
	List() ([]models.User, error)

	// FirstOrCreateProfile returns the user's profile, creating an empty one if missing
	FirstOrCreateProfile(userID uint64) (*models.Profile, error)

	// UpdateProfile saves a profile
	UpdateProfile(profile *models.Profile) error
}

// TokenDenylist records revoked bearer token IDs until they expire
type TokenDenylist interface {
	// Revoke marks a token ID as revoked for ttl
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether a token ID has been revoked
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
