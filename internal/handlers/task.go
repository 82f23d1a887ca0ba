package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/services"
	"github.com/yukikurage/team-task-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of the caller's teams.
// Supports status, priority, team, assigned_to, search, ordering, limit and offset.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	teamID, ok := optionalIDQuery(c, "team")
	if !ok {
		return
	}
	assignedTo, ok := optionalIDQuery(c, "assigned_to")
	if !ok {
		return
	}

	var ordering []string
	if raw := c.Query("ordering"); raw != "" {
		ordering = strings.Split(raw, ",")
	}

	tasks, err := h.taskService.ListTasks(services.ListTasksInput{
		UserID:       userID,
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		TeamID:       teamID,
		AssignedToID: assignedTo,
		Search:       c.Query("search"),
		Ordering:     ordering,
		Pagination:   utils.GetPaginationParams(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskRouteParams(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// taskRequest is the body accepted by create and update. It has no creator or
// timestamp fields; those are always set by the server.
type taskRequest struct {
	Title        *string          `json:"title" binding:"omitempty,max=255"`
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	Priority     *string          `json:"priority"`
	DueDate      dto.NullableDate `json:"due_date"`
	Team         dto.NullableID   `json:"team"`
	TeamID       dto.NullableID   `json:"team_id"`
	AssignedToID dto.NullableID   `json:"assigned_to_id"`
}

func (r taskRequest) team() *uint64 {
	if r.TeamID.Value != nil {
		return r.TeamID.Value
	}
	return r.Team.Value
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		CreatorID:    userID,
		TeamID:       req.team(),
		Title:        deref(req.Title),
		Description:  deref(req.Description),
		Status:       deref(req.Status),
		Priority:     deref(req.Priority),
		DueDate:      req.DueDate.Value,
		AssignedToID: req.AssignedToID.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task. PUT requires a title, PATCH changes only the
// fields present in the body.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskRouteParams(c)
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}
	if c.Request.Method == http.MethodPut && req.Title == nil {
		apierrors.ValidationFailed(c, "title", "This field is required.")
		return
	}

	task, err := h.taskService.UpdateTask(services.UpdateTaskInput{
		TaskID:        taskID,
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       req.DueDate.Value,
		DueDateSet:    req.DueDate.Set,
		AssignedToID:  req.AssignedToID.Value,
		AssignedToSet: req.AssignedToID.Set,
		TeamID:        req.team(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskRouteParams(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListComments returns the comments of a task, newest first
func (h *TaskHandler) ListComments(c *gin.Context) {
	userID, taskID, ok := taskRouteParams(c)
	if !ok {
		return
	}

	comments, err := h.taskService.ListComments(taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

// AddComment comments on a task as the caller
func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, taskID, ok := taskRouteParams(c)
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Content string `json:"content"`
	}

	var req AddCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.taskService.AddComment(services.AddCommentInput{
		TaskID:  taskID,
		UserID:  userID,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// GenerateTasks suggests task drafts for a team from free text
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string         `json:"text"`
		Team dto.NullableID `json:"team"`
	}

	var req GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		UserID: userID,
		TeamID: req.Team.Value,
		Text:   req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDraftDTOs(drafts),
	})
}

func taskRouteParams(c *gin.Context) (uint64, uint64, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return 0, 0, false
	}
	taskID, ok := middleware.ParseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, 0, false
	}
	return userID, taskID, true
}

func optionalIDQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.ValidationFailed(c, name, "Select a valid choice.")
		return nil, false
	}
	return &id, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
