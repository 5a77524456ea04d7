package entity

import (
	"time"
)

// Task priorities
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
	TaskPriorityUrgent = "URGENT"
)

// Task statuses
const (
	TaskStatusPending    = "PENDING"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusDeferred   = "DEFERRED"
	TaskStatusCancelled  = "CANCELLED"
)

var TaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

var TaskStatuses = []string{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDeferred, TaskStatusCancelled}

// Task follow-up item attached to a customer
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"type:text"`
	CustomerID  string     `json:"customer_id" gorm:"size:36;not null;index"`
	CreatedBy   string     `json:"created_by" gorm:"size:36;not null;index"`
	AssignedTo  *string    `json:"assigned_to" gorm:"size:36;index"`
	Priority    string     `json:"priority" gorm:"size:10;not null;default:MEDIUM;index"`
	Status      string     `json:"status" gorm:"size:15;not null;default:PENDING;index"`
	DueDate     *time.Time `json:"due_date" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Creator  *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Assignee *User     `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) isOpen() bool {
	return t.Status != TaskStatusCompleted && t.Status != TaskStatusCancelled
}

// IsOverdue true when the due date has passed and the task is still open
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || !t.isOpen() {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// IsDueSoon true when the task is open and due within the next 24 hours
func (t *Task) IsDueSoon() bool {
	if t.DueDate == nil || !t.isOpen() {
		return false
	}
	return time.Now().Add(24 * time.Hour).After(*t.DueDate)
}

// TaskComment discussion entry on a task
type TaskComment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TaskID    string    `json:"task_id" gorm:"size:36;not null;index"`
	AuthorID  string    `json:"author_id" gorm:"size:36;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}
