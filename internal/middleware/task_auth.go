package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/logger"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequireTaskAccess checks if the user has access to a task
// User must be a member of the task's team
func RequireTaskAccess(tasks repository.TaskRepository, authorizer *services.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := ParseIDParam(c, "id")
		if !ok {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.FindByID(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			logger.WithTrace(c.Request.Context()).Error("failed to load task", zap.Uint64("task_id", taskID), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}

		isMember, err := authorizer.IsMember(task.TeamID, userID)
		if err != nil {
			logger.WithTrace(c.Request.Context()).Error("failed to check membership", zap.Uint64("task_id", taskID), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}
		if !isMember {
			apierrors.Forbidden(c, services.ErrNotTeamMember.Error())
			return
		}

		c.Next()
	}
}
