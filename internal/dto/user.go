package dto

import "github.com/yukikurage/team-task-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileDTO represents a profile in API responses
type ProfileDTO struct {
	ID         uint64 `json:"id"`
	User       uint64 `json:"user"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
	Position   string `json:"position"`
}

// RegisterResponse is returned by a successful registration
type RegisterResponse struct {
	User    UserDTO `json:"user"`
	Message string  `json:"message"`
}

// ProfileResponse bundles the caller with their profile
type ProfileResponse struct {
	User    UserDTO    `json:"user"`
	Profile ProfileDTO `json:"profile"`
}

// TokenResponse is returned when a bearer token is issued
type TokenResponse struct {
	Access    string `json:"access"`
	ExpiresAt string `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, user := range users {
		result[i] = ToUserDTO(user)
	}
	return result
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:         profile.ID,
		User:       profile.UserID,
		Bio:        profile.Bio,
		ProfilePic: profile.ProfilePic,
		Position:   profile.Position,
	}
}
