package models

import "time"

type TeamRole string

const (
	RoleAdmin  TeamRole = "admin"
	RoleMember TeamRole = "member"
)

// Valid reports whether r is one of the two defined roles.
func (r TeamRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type TeamMembership struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	TeamID   uint64    `gorm:"not null;uniqueIndex:idx_team_memberships_team_user" json:"team"`
	UserID   uint64    `gorm:"not null;uniqueIndex:idx_team_memberships_team_user;index" json:"user_id"`
	Role     TeamRole  `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// IsAdmin reports whether the membership carries the admin role.
func (m TeamMembership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
