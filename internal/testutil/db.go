package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that lives until the test ends.
// The pool is pinned to one connection because every new connection to
// ":memory:" would see an empty database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// CreateUser inserts a user with a profile and a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID}).Error)
	return user
}

// CreateTeam inserts a team with admin as its only admin member.
func CreateTeam(t *testing.T, db *gorm.DB, name string, admin *models.User) *models.Team {
	t.Helper()

	team := &models.Team{Name: name, CreatedByID: admin.ID}
	require.NoError(t, db.Omit("CreatedBy").Create(team).Error)
	AddMember(t, db, team, admin, models.RoleAdmin)
	return team
}

// AddMember inserts a membership of user in team with the given role.
func AddMember(t *testing.T, db *gorm.DB, team *models.Team, user *models.User, role models.TeamRole) *models.TeamMembership {
	t.Helper()

	member := &models.TeamMembership{TeamID: team.ID, UserID: user.ID, Role: role}
	require.NoError(t, db.Omit("Team", "User").Create(member).Error)
	return member
}

// CreateTask inserts a task in team created by creator.
func CreateTask(t *testing.T, db *gorm.DB, team *models.Team, creator *models.User, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		TeamID:      team.ID,
		CreatedByID: creator.ID,
	}
	require.NoError(t, db.Omit("CreatedBy", "AssignedTo", "Team").Create(task).Error)
	return task
}
