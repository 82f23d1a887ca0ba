package services

import (
	"context"
	"testing"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/testutil"
	"gorm.io/gorm"
)

type serviceEnv struct {
	db         *gorm.DB
	authorizer *Authorizer
	teams      *TeamService
	tasks      *TaskService
	users      *UserService
	auth       *AuthService
}

func setupServiceEnv(t *testing.T) serviceEnv {
	return setupServiceEnvWithGenerator(t, nil)
}

func setupServiceEnvWithGenerator(t *testing.T, generator TaskGenerator) serviceEnv {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authorizer := NewAuthorizer(teamRepo)

	return serviceEnv{
		db:         db,
		authorizer: authorizer,
		teams:      NewTeamService(teamRepo, userRepo, authorizer),
		tasks:      NewTaskService(taskRepo, teamRepo, userRepo, authorizer, generator),
		users:      NewUserService(userRepo),
		auth:       NewAuthService(userRepo),
	}
}

func (e serviceEnv) adminCount(t *testing.T, teamID uint64) int64 {
	t.Helper()
	var count int64
	e.db.Model(&models.TeamMembership{}).Where("team_id = ? AND role = ?", teamID, models.RoleAdmin).Count(&count)
	return count
}

func (e serviceEnv) memberCount(t *testing.T, teamID uint64) int64 {
	t.Helper()
	var count int64
	e.db.Model(&models.TeamMembership{}).Where("team_id = ?", teamID).Count(&count)
	return count
}

type fakeGenerator struct {
	drafts []GeneratedTask
	err    error
	calls  int
}

func (g *fakeGenerator) GenerateTasksFromText(_ context.Context, _ string) ([]GeneratedTask, error) {
	g.calls++
	return g.drafts, g.err
}

func ptr[T any](v T) *T {
	return &v
}
