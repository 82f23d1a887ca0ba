package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-api/internal/metrics"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"gorm.io/gorm"
)

// TeamService provides business logic for teams and their memberships.
type TeamService struct {
	teamRepo   repository.TeamRepository
	userRepo   repository.UserRepository
	authorizer *Authorizer
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, authorizer *Authorizer) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		authorizer: authorizer,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// CreateTeam creates a team and makes its creator the first admin.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, requiredField("name")
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		CreatedByID: input.CreatorID,
	}
	admin := &models.TeamMembership{UserID: input.CreatorID}

	if err := s.teamRepo.CreateWithAdmin(team, admin); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	metrics.IncrementTeamsCreated()

	return s.loadTeam(team.ID)
}

// ListTeamsForUser returns the teams the user belongs to.
func (s *TeamService) ListTeamsForUser(userID uint64) ([]models.Team, error) {
	teams, err := s.teamRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam returns a team with its creator and members if userID belongs to it.
func (s *TeamService) GetTeam(teamID, userID uint64) (*models.Team, error) {
	if _, err := s.findTeam(teamID); err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(teamID, userID); err != nil {
		return nil, err
	}
	return s.loadTeam(teamID)
}

// UpdateTeamInput carries the fields an admin may change. Nil fields are left as they are.
type UpdateTeamInput struct {
	TeamID      uint64
	ActorID     uint64
	Name        *string
	Description *string
}

// UpdateTeam renames or redescribes a team.
func (s *TeamService) UpdateTeam(input UpdateTeamInput) (*models.Team, error) {
	team, err := s.findTeam(input.TeamID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAdmin(team.ID, input.ActorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("name", "This field may not be blank.")
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return s.loadTeam(team.ID)
}

// DeleteTeam removes a team with its memberships, tasks and comments.
func (s *TeamService) DeleteTeam(teamID, actorID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}
	if err := s.authorizer.RequireAdmin(teamID, actorID); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// ListMembers returns the memberships of a team the caller belongs to.
func (s *TeamService) ListMembers(teamID, userID uint64) ([]models.TeamMembership, error) {
	if _, err := s.findTeam(teamID); err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(teamID, userID); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// AddMemberInput represents parameters to add a user to a team.
type AddMemberInput struct {
	TeamID  uint64
	ActorID uint64
	UserID  uint64
	Role    models.TeamRole
}

// AddMember adds a user to a team. Only admins may add members.
func (s *TeamService) AddMember(input AddMemberInput) (*models.TeamMembership, error) {
	if _, err := s.findTeam(input.TeamID); err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAdmin(input.TeamID, input.ActorID); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, invalidChoice("role", string(role))
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if member, err := s.authorizer.Membership(input.TeamID, user.ID); err != nil {
		return nil, err
	} else if member != nil {
		return nil, ErrAlreadyMember
	}

	member := &models.TeamMembership{
		TeamID: input.TeamID,
		UserID: user.ID,
		Role:   role,
	}
	if err := s.teamRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	metrics.IncrementMembershipChange("add")

	member.User = *user
	return member, nil
}

// RemoveMember removes a user from a team. Only admins may remove members and
// the last admin of a team cannot be removed. The actor's role is checked in
// the same locked transaction as the removal.
func (s *TeamService) RemoveMember(teamID, actorID, targetID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}

	if err := s.teamRepo.RemoveMember(teamID, actorID, targetID); err != nil {
		switch {
		case errors.Is(err, repository.ErrActorNotAdmin):
			return ErrNotTeamAdmin
		case errors.Is(err, repository.ErrMembershipNotFound):
			return ErrMembershipNotFound
		case errors.Is(err, repository.ErrLastAdmin):
			return ErrLastAdmin
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	metrics.IncrementMembershipChange("remove")

	return nil
}

func (s *TeamService) findTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func (s *TeamService) loadTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID, "CreatedBy", "Memberships.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return team, nil
}
