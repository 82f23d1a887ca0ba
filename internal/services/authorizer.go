package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// Authorizer answers membership questions for every team, task and comment
// operation as well as the route middleware.
type Authorizer struct {
	teamRepo repository.TeamRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(teamRepo repository.TeamRepository) *Authorizer {
	return &Authorizer{teamRepo: teamRepo}
}

// Membership returns the membership of userID in teamID, or nil when there is none.
func (a *Authorizer) Membership(teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := a.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

func (a *Authorizer) IsMember(teamID, userID uint64) (bool, error) {
	member, err := a.Membership(teamID, userID)
	return member != nil, err
}

func (a *Authorizer) IsAdmin(teamID, userID uint64) (bool, error) {
	member, err := a.Membership(teamID, userID)
	if err != nil {
		return false, err
	}
	return member != nil && member.IsAdmin(), nil
}

// RequireMember returns ErrNotTeamMember unless userID belongs to teamID.
func (a *Authorizer) RequireMember(teamID, userID uint64) error {
	ok, err := a.IsMember(teamID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotTeamMember
	}
	return nil
}

// RequireAdmin returns ErrNotTeamAdmin unless userID is an admin of teamID.
func (a *Authorizer) RequireAdmin(teamID, userID uint64) error {
	ok, err := a.IsAdmin(teamID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotTeamAdmin
	}
	return nil
}
