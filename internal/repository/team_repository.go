package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateTeam is returned when creating a team fails inside the creation transaction.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrCreateMembership is returned when creating the creator's membership fails.
	ErrCreateMembership = errors.New("team repository: create membership failed")
	// ErrMembershipNotFound is returned when removing a user who is not a member.
	ErrMembershipNotFound = errors.New("team repository: membership not found")
	// ErrLastAdmin is returned when a removal would leave a team without an admin.
	ErrLastAdmin = errors.New("team repository: cannot remove the last admin")
	// ErrActorNotAdmin is returned when the user asking for a removal is not an
	// admin of the team once its row is locked.
	ErrActorNotAdmin = errors.New("team repository: actor is not a team admin")
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithAdmin creates a team and makes admin.UserID its first admin.
func (r *GormTeamRepository) CreateWithAdmin(team *models.Team, admin *models.TeamMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateTeam, err)
		}

		admin.TeamID = team.ID
		admin.Role = models.RoleAdmin
		if err := tx.Omit(clause.Associations).Create(admin).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateMembership, err)
		}

		return nil
	})
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Omit(clause.Associations).Save(team).Error
}

// Delete removes a team together with everything that belongs to it.
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("team_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, id).Error
	})
}

// ListForUser lists the teams userID is a member of, with creator and members loaded.
func (r *GormTeamRepository) ListForUser(userID uint64) ([]models.Team, error) {
	teams := []models.Team{}
	err := r.db.
		Where("id IN (?)", r.db.Model(&models.TeamMembership{}).Select("team_id").Where("user_id = ?", userID)).
		Preload("CreatedBy").
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("team_memberships.id ASC")
		}).
		Preload("Memberships.User").
		Order("teams.id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember creates a membership. A duplicate (team, user) pair surfaces as
// gorm.ErrDuplicatedKey.
func (r *GormTeamRepository) AddMember(member *models.TeamMembership) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMembership, error) {
	var member models.TeamMembership
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the memberships of a team in join order
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMembership, error) {
	members := []models.TeamMembership{}
	err := r.db.
		Where("team_id = ?", teamID).
		Preload("User").
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountAdmins counts the admin memberships of a team
func (r *GormTeamRepository) CountAdmins(teamID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMembership{}).
		Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// RemoveMember deletes the membership of userID in teamID on behalf of
// actorID. The team row is locked first, so the actor's admin role and the
// admin count are read under the same lock and at least one admin always
// survives.
func (r *GormTeamRepository) RemoveMember(teamID, actorID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, teamID).Error; err != nil {
			return err
		}

		actor, err := findMembership(tx, teamID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActorNotAdmin
			}
			return err
		}
		if !actor.IsAdmin() {
			return ErrActorNotAdmin
		}

		member := actor
		if userID != actorID {
			member, err = findMembership(tx, teamID, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrMembershipNotFound
				}
				return err
			}
		}

		if member.IsAdmin() {
			var admins int64
			if err := tx.Model(&models.TeamMembership{}).
				Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).
				Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.Delete(member).Error
	})
}

func findMembership(tx *gorm.DB, teamID, userID uint64) (*models.TeamMembership, error) {
	var member models.TeamMembership
	if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
