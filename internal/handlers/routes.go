package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client

	TeamRepo repository.TeamRepository
	TaskRepo repository.TaskRepository

	Authorizer   *services.Authorizer
	AuthService  *services.AuthService
	UserService  *services.UserService
	TeamService  *services.TeamService
	TaskService  *services.TaskService
	TokenService *services.TokenService
}

// NewDependencies wires repositories and services on top of db. redisClient
// and generator may be nil.
func NewDependencies(db *gorm.DB, redisClient *redis.Client, tokens *services.TokenService, generator services.TaskGenerator) *Dependencies {
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authorizer := services.NewAuthorizer(teamRepo)

	return &Dependencies{
		DB:           db,
		Redis:        redisClient,
		TeamRepo:     teamRepo,
		TaskRepo:     taskRepo,
		Authorizer:   authorizer,
		AuthService:  services.NewAuthService(userRepo),
		UserService:  services.NewUserService(userRepo),
		TeamService:  services.NewTeamService(teamRepo, userRepo, authorizer),
		TaskService:  services.NewTaskService(taskRepo, teamRepo, userRepo, authorizer, generator),
		TokenService: tokens,
	}
}

// RegisterRoutes mounts the health endpoints and the /api tree on r. Session
// middleware must already be installed.
func RegisterRoutes(r *gin.Engine, deps *Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService, deps.TokenService)
	userHandler := NewUserHandler(deps.UserService)
	teamHandler := NewTeamHandler(deps.TeamService)
	taskHandler := NewTaskHandler(deps.TaskService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Team Task API is running",
		})
	})
	r.GET("/readyz", readiness(deps))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.TokenService)
	teamAccess := middleware.RequireTeamAccess(deps.TeamRepo, deps.Authorizer)
	teamAdmin := middleware.RequireTeamAdmin()
	taskAccess := middleware.RequireTaskAccess(deps.TaskRepo, deps.Authorizer)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		api.POST("/token", authHandler.IssueToken)
		api.POST("/token/revoke", authHandler.RevokeToken)

		users := api.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.GET("", requireAuth, userHandler.ListUsers)
			users.GET("/search", requireAuth, userHandler.SearchUsers)
			users.GET("/profile", requireAuth, userHandler.GetProfile)
			users.PUT("/profile", requireAuth, userHandler.UpdateProfile)
			users.PATCH("/profile", requireAuth, userHandler.UpdateProfile)
		}

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", teamAccess, teamHandler.GetTeam)
			teams.PUT("/:id", teamAccess, teamAdmin, teamHandler.UpdateTeam)
			teams.PATCH("/:id", teamAccess, teamAdmin, teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamAccess, teamAdmin, teamHandler.DeleteTeam)
			teams.GET("/:id/members", teamAccess, teamHandler.ListMembers)
			teams.POST("/:id/members", teamAccess, teamAdmin, teamHandler.AddMember)
			teams.DELETE("/:id/remove_member", teamAccess, teamAdmin, teamHandler.RemoveMember)
			teams.DELETE("/:id/members/:user_id", teamAccess, teamAdmin, teamHandler.RemoveMemberByPath)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
			tasks.GET("/:id/comments", taskAccess, taskHandler.ListComments)
			tasks.POST("/:id/comments", taskAccess, taskHandler.AddComment)
		}
	}
}

func readiness(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{"database": "ok"}
		status := http.StatusOK

		if err := database.Ping(deps.DB); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		if deps.Redis != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "ok"
			}
		}

		c.JSON(status, checks)
	}
}
