package dto

import (
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Status            models.TaskStatus   `json:"status"`
	Priority          models.TaskPriority `json:"priority"`
	DueDate           *time.Time          `json:"due_date"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CreatedBy         UserDTO             `json:"created_by"`
	CreatedByUsername string              `json:"created_by_username"`
	AssignedTo        *UserDTO            `json:"assigned_to"`
	AssignedToName    *string             `json:"assigned_to_name"`
	Team              TeamSummaryDTO      `json:"team"`
	TeamName          string              `json:"team_name"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Task      uint64    `json:"task"`
	User      UserDTO   `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDraftDTO is a generated, unsaved task suggestion
type TaskDraftDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// ToTaskDTO converts a task with preloaded creator, assignee and team
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Status:            task.Status,
		Priority:          task.Priority,
		DueDate:           task.DueDate,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
		CreatedBy:         ToUserDTO(task.CreatedBy),
		CreatedByUsername: task.CreatedBy.Username,
		Team:              ToTeamSummaryDTO(task.Team),
		TeamName:          task.Team.Name,
	}

	if task.AssignedTo != nil {
		assignee := ToUserDTO(*task.AssignedTo)
		name := task.AssignedTo.DisplayName()
		dto.AssignedTo = &assignee
		dto.AssignedToName = &name
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	result := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		result[i] = ToTaskDTO(task)
	}
	return result
}

// ToCommentDTO converts a comment with a preloaded author
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Task:      comment.TaskID,
		User:      ToUserDTO(comment.User),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	result := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		result[i] = ToCommentDTO(comment)
	}
	return result
}

// ToTaskDraftDTOs converts generated drafts
func ToTaskDraftDTOs(drafts []services.GeneratedTask) []TaskDraftDTO {
	result := make([]TaskDraftDTO, len(drafts))
	for i, draft := range drafts {
		result[i] = TaskDraftDTO{
			Title:       draft.Title,
			Description: draft.Description,
			Priority:    draft.Priority,
			DueDate:     draft.DueDate,
		}
	}
	return result
}
