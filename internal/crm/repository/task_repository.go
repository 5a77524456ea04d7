package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter list filters, zero values mean "not filtered"
type TaskFilter struct {
	CustomerID string
	AssignedTo string
	CreatedBy  string
	Status     string
	Priority   string
	Overdue    bool
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Creator").
		Preload("Assignee").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

func (r *TaskRepository) FindAll(ctx context.Context, filter TaskFilter, offset, limit int) ([]entity.Task, int64, error) {
	var tasks []entity.Task
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Task{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Customer").Preload("Assignee").
		Order("due_date ASC NULLS LAST, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&entity.TaskComment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Complete marks the task done and stamps the completion time
func (r *TaskRepository) Complete(ctx context.Context, id string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.TaskStatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskCounts dashboard buckets for one user's tasks
type TaskCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

func (r *TaskRepository) Counts(ctx context.Context, assignedTo string) (*TaskCounts, error) {
	counts := &TaskCounts{}
	base := r.db.WithContext(ctx).Model(&entity.Task{})
	if assignedTo != "" {
		base = base.Where("assigned_to = ?", assignedTo)
	}

	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", entity.TaskStatusPending).Count(&counts.Pending).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", entity.TaskStatusInProgress).Count(&counts.InProgress).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", entity.TaskStatusCompleted).Count(&counts.Completed).Error; err != nil {
		return nil, err
	}
	err := base.Session(&gorm.Session{}).
		Where("status NOT IN ?", []string{entity.TaskStatusCompleted, entity.TaskStatusCancelled}).
		Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
		Count(&counts.Overdue).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *TaskRepository) CreateComment(ctx context.Context, comment *entity.TaskComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *TaskRepository) FindComments(ctx context.Context, taskID string) ([]entity.TaskComment, error) {
	var comments []entity.TaskComment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *TaskRepository) applyFilter(query *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Overdue {
		query = query.
			Where("status NOT IN ?", []string{entity.TaskStatusCompleted, entity.TaskStatusCancelled}).
			Where("due_date IS NOT NULL AND due_date < ?", time.Now())
	}
	return query
}
