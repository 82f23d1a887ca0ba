package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/metrics"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
)

var taskPreloads = []string{"CreatedBy", "AssignedTo", "Team"}

// TaskService handles task and comment business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	teamRepo   repository.TeamRepository
	userRepo   repository.UserRepository
	authorizer *Authorizer
	generator  TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case GenerateTasks reports ErrAIUnavailable.
func NewTaskService(
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	authorizer *Authorizer,
	generator TaskGenerator,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		authorizer: authorizer,
		generator:  generator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	Status       string
	Priority     string
	TeamID       *uint64
	AssignedToID *uint64
	Search       string
	Ordering     []string
	Pagination   utils.PaginationParams
}

// ListTasks returns the tasks of the caller's teams matching the filters.
// Filtering by a team the caller does not belong to yields an empty list.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{
		UserID:       input.UserID,
		TeamID:       input.TeamID,
		AssignedToID: input.AssignedToID,
		Search:       input.Search,
		Ordering:     input.Ordering,
		Pagination:   input.Pagination,
	}

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, invalidChoice("status", input.Status)
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, invalidChoice("priority", input.Priority)
		}
		filter.Priority = &priority
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task if the caller belongs to its team.
func (s *TaskService) GetTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, taskPreloads...)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(task.TeamID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTaskInput represents input for creating a task. The creator is the
// authenticated caller and is never taken from the request body.
type CreateTaskInput struct {
	CreatorID    uint64
	TeamID       *uint64
	Title        string
	Description  string
	Status       string
	Priority     string
	DueDate      *time.Time
	AssignedToID *uint64
}

// CreateTask creates a task in a team the creator belongs to.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.TeamID == nil {
		return nil, requiredField("team")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, requiredField("title")
	}

	status := models.TaskStatusTodo
	if input.Status != "" {
		status = models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, invalidChoice("status", input.Status)
		}
	}

	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, invalidChoice("priority", input.Priority)
		}
	}

	if err := s.ensureTeamExists(*input.TeamID); err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(*input.TeamID, input.CreatorID); err != nil {
		return nil, err
	}
	if err := s.ensureAssigneeExists(input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      input.DueDate,
		CreatedByID:  input.CreatorID,
		AssignedToID: input.AssignedToID,
		TeamID:       *input.TeamID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	metrics.IncrementTasksCreated()

	return s.findTask(task.ID, taskPreloads...)
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged; the *Set flags distinguish clearing a nullable field from not
// touching it.
type UpdateTaskInput struct {
	TaskID        uint64
	UserID        uint64
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	DueDate       *time.Time
	DueDateSet    bool
	AssignedToID  *uint64
	AssignedToSet bool
	TeamID        *uint64
}

// UpdateTask updates a task of one of the caller's teams. The creator and
// creation time never change.
func (s *TaskService) UpdateTask(input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(task.TeamID, input.UserID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, newValidationError("title", "This field may not be blank.")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !status.Valid() {
			return nil, invalidChoice("status", *input.Status)
		}
		task.Status = status
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return nil, invalidChoice("priority", *input.Priority)
		}
		task.Priority = priority
	}
	if input.DueDateSet {
		task.DueDate = input.DueDate
	}
	if input.AssignedToSet {
		if err := s.ensureAssigneeExists(input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = input.AssignedToID
	}
	if input.TeamID != nil && *input.TeamID != task.TeamID {
		if err := s.ensureTeamExists(*input.TeamID); err != nil {
			return nil, err
		}
		if err := s.authorizer.RequireMember(*input.TeamID, input.UserID); err != nil {
			return nil, err
		}
		task.TeamID = *input.TeamID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.findTask(task.ID, taskPreloads...)
}

// DeleteTask deletes a task of one of the caller's teams.
func (s *TaskService) DeleteTask(taskID, userID uint64) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if err := s.authorizer.RequireMember(task.TeamID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListComments returns the comments of a task, newest first.
func (s *TaskService) ListComments(taskID, userID uint64) ([]models.Comment, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(task.TeamID, userID); err != nil {
		return nil, err
	}

	comments, err := s.taskRepo.ListComments(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// AddCommentInput represents input for commenting on a task. The author is
// the authenticated caller.
type AddCommentInput struct {
	TaskID  uint64
	UserID  uint64
	Content string
}

// AddComment adds a comment to a task of one of the caller's teams.
func (s *TaskService) AddComment(input AddCommentInput) (*models.Comment, error) {
	task, err := s.findTask(input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(task.TeamID, input.UserID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, requiredField("content")
	}

	comment := &models.Comment{
		TaskID:  task.ID,
		UserID:  input.UserID,
		Content: content,
	}
	if err := s.taskRepo.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	metrics.IncrementCommentsCreated()

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment author: %w", err)
	}
	comment.User = *user

	return comment, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	UserID uint64
	TeamID *uint64
	Text   string
}

// GenerateTasks asks the configured generator for task drafts for a team the
// caller belongs to. Nothing is persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIUnavailable
	}
	if input.TeamID == nil {
		return nil, requiredField("team")
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, requiredField("text")
	}
	if err := s.ensureTeamExists(*input.TeamID); err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireMember(*input.TeamID, input.UserID); err != nil {
		return nil, err
	}

	drafts, err := s.generator.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	for i := range drafts {
		if drafts[i].DueDate != nil && drafts[i].DueDate.Before(cutoff) {
			drafts[i].DueDate = nil
		}
	}

	return drafts, nil
}

func (s *TaskService) findTask(taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureTeamExists(teamID uint64) error {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("team_id", "Team does not exist")
		}
		return fmt.Errorf("failed to find team: %w", err)
	}
	return nil
}

func (s *TaskService) ensureAssigneeExists(userID *uint64) error {
	if userID == nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(*userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("assigned_to_id", "User does not exist")
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	return nil
}
