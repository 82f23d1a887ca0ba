package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListTeams returns the teams the caller belongs to
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	teams, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams, userID))
}

// CreateTeam creates a team with the caller as admin
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"max=255"`
		Description string `json:"description"`
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team, userID))
}

// GetTeam returns team details
func (h *TeamHandler) GetTeam(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(teamID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team, userID))
}

// UpdateTeam changes a team's name or description
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	var req UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}
	if c.Request.Method == http.MethodPut && req.Name == nil {
		apierrors.ValidationFailed(c, "name", "This field is required.")
		return
	}

	team, err := h.teamService.UpdateTeam(services.UpdateTeamInput{
		TeamID:      teamID,
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team, userID))
}

// DeleteTeam removes a team and everything in it
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(teamID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns the memberships of a team
func (h *TeamHandler) ListMembers(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(teamID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipDTOs(members))
}

// AddMember adds a user to a team
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		User dto.NullableID  `json:"user"`
		Role models.TeamRole `json:"role"`
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.User.Value == nil {
		apierrors.ValidationFailed(c, "user", "This field is required.")
		return
	}

	member, err := h.teamService.AddMember(services.AddMemberInput{
		TeamID:  teamID,
		ActorID: userID,
		UserID:  *req.User.Value,
		Role:    req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMembershipDTO(*member))
}

// RemoveMember removes the user named by user_id in the body or query string
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	type RemoveMemberRequest struct {
		UserID dto.NullableID `json:"user_id"`
	}

	var req RemoveMemberRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	targetID := req.UserID.Value
	if targetID == nil {
		if raw := c.Query("user_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				apierrors.ValidationFailed(c, "user_id", "A valid integer is required.")
				return
			}
			targetID = &id
		}
	}
	if targetID == nil {
		apierrors.ValidationFailed(c, "user_id", "This field is required.")
		return
	}

	h.removeMember(c, teamID, userID, *targetID)
}

// RemoveMemberByPath removes the user named by the :user_id path parameter
func (h *TeamHandler) RemoveMemberByPath(c *gin.Context) {
	userID, teamID, ok := teamRouteParams(c)
	if !ok {
		return
	}

	targetID, ok := middleware.ParseIDParam(c, "user_id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	h.removeMember(c, teamID, userID, targetID)
}

func (h *TeamHandler) removeMember(c *gin.Context, teamID, actorID, targetID uint64) {
	if err := h.teamService.RemoveMember(teamID, actorID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func requireUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

func teamRouteParams(c *gin.Context) (uint64, uint64, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return 0, 0, false
	}
	teamID, ok := middleware.ParseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid team ID")
		return 0, 0, false
	}
	return userID, teamID, true
}
