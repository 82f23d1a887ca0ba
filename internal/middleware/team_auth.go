package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/logger"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const contextKeyTeamMembership = "team_membership"

// RequireTeamAccess loads the team named by the :id parameter and rejects
// callers who are not members of it.
func RequireTeamAccess(teams repository.TeamRepository, authorizer *services.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := ParseIDParam(c, "id")
		if !ok {
			apierrors.BadRequest(c, "Invalid team ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		team, err := teams.FindByID(teamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Team not found")
				return
			}
			logger.WithTrace(c.Request.Context()).Error("failed to load team", zap.Uint64("team_id", teamID), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}

		member, err := authorizer.Membership(team.ID, userID)
		if err != nil {
			logger.WithTrace(c.Request.Context()).Error("failed to check membership", zap.Uint64("team_id", teamID), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}
		if member == nil {
			apierrors.Forbidden(c, services.ErrNotTeamMember.Error())
			return
		}

		c.Set(contextKeyTeamMembership, *member)
		c.Next()
	}
}

// RequireTeamAdmin rejects callers whose membership, loaded by
// RequireTeamAccess, is not an admin one.
func RequireTeamAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(contextKeyTeamMembership)
		if !exists {
			apierrors.Forbidden(c, "Team access required")
			return
		}

		member, ok := value.(models.TeamMembership)
		if !ok || !member.IsAdmin() {
			apierrors.Forbidden(c, services.ErrNotTeamAdmin.Error())
			return
		}

		c.Next()
	}
}
