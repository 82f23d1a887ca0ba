package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
)

// TeamDTO represents a team in API responses. IsAdmin is relative to the
// caller the DTO was built for.
type TeamDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    UserDTO   `json:"created_by"`
	Members      []UserDTO `json:"members"`
	MembersCount int       `json:"members_count"`
	IsAdmin      bool      `json:"is_admin"`
}

// TeamSummaryDTO is the team embedded in task responses
type TeamSummaryDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MembershipDTO represents a team membership in API responses
type MembershipDTO struct {
	ID       uint64          `json:"id"`
	User     UserDTO         `json:"user"`
	Team     uint64          `json:"team"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

// ToTeamDTO converts a team with preloaded memberships. callerID 0 means an
// anonymous caller, who is never an admin.
func ToTeamDTO(team models.Team, callerID uint64) TeamDTO {
	members := make([]UserDTO, len(team.Memberships))
	isAdmin := false
	for i, membership := range team.Memberships {
		members[i] = ToUserDTO(membership.User)
		if callerID != 0 && membership.UserID == callerID && membership.IsAdmin() {
			isAdmin = true
		}
	}

	return TeamDTO{
		ID:           team.ID,
		Name:         team.Name,
		Description:  team.Description,
		CreatedAt:    team.CreatedAt,
		CreatedBy:    ToUserDTO(team.CreatedBy),
		Members:      members,
		MembersCount: len(team.Memberships),
		IsAdmin:      isAdmin,
	}
}

// ToTeamDTOs converts a slice of teams for one caller
func ToTeamDTOs(teams []models.Team, callerID uint64) []TeamDTO {
	result := make([]TeamDTO, len(teams))
	for i, team := range teams {
		result[i] = ToTeamDTO(team, callerID)
	}
	return result
}

// ToTeamSummaryDTO converts a team without its members
func ToTeamSummaryDTO(team models.Team) TeamSummaryDTO {
	return TeamSummaryDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
	}
}

// ToMembershipDTO converts a membership with a preloaded user
func ToMembershipDTO(membership models.TeamMembership) MembershipDTO {
	return MembershipDTO{
		ID:       membership.ID,
		User:     ToUserDTO(membership.User),
		Team:     membership.TeamID,
		Role:     membership.Role,
		JoinedAt: membership.JoinedAt,
	}
}

// ToMembershipDTOs converts a slice of memberships
func ToMembershipDTOs(memberships []models.TeamMembership) []MembershipDTO {
	result := make([]MembershipDTO, len(memberships))
	for i, membership := range memberships {
		result[i] = ToMembershipDTO(membership)
	}
	return result
}
