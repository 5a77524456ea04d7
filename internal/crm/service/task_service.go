package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// TaskService follow-up tasks and their comment threads
type TaskService struct {
	tasks     *repository.TaskRepository
	customers *repository.CustomerRepository
}

func NewTaskService(tasks *repository.TaskRepository, customers *repository.CustomerRepository) *TaskService {
	return &TaskService{tasks: tasks, customers: customers}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	CustomerID  string     `json:"customer_id" binding:"required"`
	AssignedTo  *string    `json:"assigned_to"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assigned_to"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskView task plus the derived due flags
type TaskView struct {
	entity.Task
	IsOverdue bool `json:"is_overdue"`
	IsDueSoon bool `json:"is_due_soon"`
}

func viewOf(t entity.Task) TaskView {
	return TaskView{Task: t, IsOverdue: t.IsOverdue(), IsDueSoon: t.IsDueSoon()}
}

func (s *TaskService) Create(ctx context.Context, actor Actor, req *CreateTaskRequest) (*TaskView, error) {
	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}
	if !validPriority(priority) {
		return nil, ErrInvalidStatus
	}

	assignedTo := req.AssignedTo
	if assignedTo == nil {
		assignedTo = &actor.ID
	}

	task := &entity.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		CreatedBy:   actor.ID,
		AssignedTo:  assignedTo,
		Priority:    priority,
		Status:      entity.TaskStatusPending,
		DueDate:     req.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	v := viewOf(*task)
	return &v, nil
}

func (s *TaskService) Get(ctx context.Context, actor Actor, id string) (*TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, task); err != nil {
		return nil, err
	}
	v := viewOf(*task)
	return &v, nil
}

// List tasks visible to the actor. Counsellors see tasks they own or created.
func (s *TaskService) List(ctx context.Context, actor Actor, filter repository.TaskFilter, offset, limit int) ([]TaskView, int64, error) {
	if !actor.IsManager() && filter.CreatedBy == "" {
		filter.AssignedTo = actor.ID
	}
	tasks, total, err := s.tasks.FindAll(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = viewOf(t)
	}
	return views, total, nil
}

func (s *TaskService) Update(ctx context.Context, actor Actor, id string, req *UpdateTaskRequest) (*TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, task); err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			return nil, ErrInvalidStatus
		}
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		if !validTaskStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *req.Status
		if *req.Status == entity.TaskStatusCompleted && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	v := viewOf(*task)
	return &v, nil
}

func (s *TaskService) Complete(ctx context.Context, actor Actor, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, task); err != nil {
		return err
	}
	return s.tasks.Complete(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, actor Actor, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsManager() && task.CreatedBy != actor.ID {
		return ErrPermissionDenied
	}
	return s.tasks.Delete(ctx, id)
}

// Counts dashboard buckets, scoped to the actor unless they manage
func (s *TaskService) Counts(ctx context.Context, actor Actor) (*repository.TaskCounts, error) {
	scope := ""
	if !actor.IsManager() {
		scope = actor.ID
	}
	return s.tasks.Counts(ctx, scope)
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *TaskService) AddComment(ctx context.Context, actor Actor, taskID string, req *CreateCommentRequest) (*entity.TaskComment, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, task); err != nil {
		return nil, err
	}

	comment := &entity.TaskComment{
		ID:       uuid.New().String(),
		TaskID:   taskID,
		AuthorID: actor.ID,
		Content:  req.Content,
	}
	if err := s.tasks.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *TaskService) ListComments(ctx context.Context, actor Actor, taskID string) ([]entity.TaskComment, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, task); err != nil {
		return nil, err
	}
	return s.tasks.FindComments(ctx, taskID)
}

func (s *TaskService) authorize(actor Actor, task *entity.Task) error {
	if actor.IsManager() {
		return nil
	}
	if task.CreatedBy == actor.ID {
		return nil
	}
	if task.AssignedTo != nil && *task.AssignedTo == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}

func validPriority(p string) bool {
	for _, v := range entity.TaskPriorities {
		if v == p {
			return true
		}
	}
	return false
}

func validTaskStatus(s string) bool {
	for _, v := range entity.TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}
