package repository

import (
	"strings"

	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const priorityRank = "CASE tasks.priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 ELSE 4 END"

// orderColumns maps the ordering keys accepted by List to SQL expressions.
// Keys outside this map are ignored.
var orderColumns = map[string]string{
	"created_at": "tasks.created_at",
	"updated_at": "tasks.updated_at",
	"due_date":   "tasks.due_date",
	"priority":   priorityRank,
	"status":     "tasks.status",
	"title":      "tasks.title",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves the tasks of the teams filter.UserID belongs to, narrowed by
// the remaining filter fields.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}

	query := r.db.Model(&models.Task{}).
		Where("tasks.team_id IN (?)", database.MemberTeamIDs(r.db, filter.UserID))

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.TeamID != nil {
		query = query.Where("tasks.team_id = ?", *filter.TeamID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := database.ContainsPattern(search)
		query = query.Where("LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	for _, order := range orderClauses(filter.Ordering) {
		query = query.Order(order)
	}

	err := query.
		Scopes(database.Paginate(filter.Pagination)).
		Preload("CreatedBy").
		Preload("AssignedTo").
		Preload("Team").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// orderClauses turns keys such as "priority" or "-due_date" into ORDER BY
// terms. The task ID is always appended so pages are stable.
func orderClauses(keys []string) []string {
	orders := make([]string, 0, len(keys)+1)
	seen := make(map[string]bool, len(keys))

	for _, key := range keys {
		key = strings.TrimSpace(key)
		direction := "ASC"
		if strings.HasPrefix(key, "-") {
			direction = "DESC"
			key = key[1:]
		}
		column, ok := orderColumns[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		orders = append(orders, column+" "+direction)
	}

	if len(orders) == 0 {
		orders = append(orders, "tasks.created_at DESC")
	}
	return append(orders, "tasks.id DESC")
}

// Update updates a task's own columns, leaving preloaded relations untouched.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete deletes a task and its comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ListComments lists the comments of a task, newest first
func (r *GormTaskRepository) ListComments(taskID uint64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.
		Where("task_id = ?", taskID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment creates a new comment
func (r *GormTaskRepository) CreateComment(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}
