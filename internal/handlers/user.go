package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns every user ordered by username
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// SearchUsers returns up to ten users matching ?query=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userService.SearchUsers(c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// GetProfile returns the caller and their profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, profile, err := h.userService.GetOrCreateProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		User:    dto.ToUserDTO(*user),
		Profile: dto.ToProfileDTO(*profile),
	})
}

// UpdateProfile changes the caller's bio, picture or position
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		Bio        *string `json:"bio"`
		ProfilePic *string `json:"profile_pic" binding:"omitempty,max=255"`
		Position   *string `json:"position"`
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, profile, err := h.userService.UpdateProfile(services.UpdateProfileInput{
		UserID:     userID,
		Bio:        req.Bio,
		ProfilePic: req.ProfilePic,
		Position:   req.Position,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		User:    dto.ToUserDTO(*user),
		Profile: dto.ToProfileDTO(*profile),
	})
}
