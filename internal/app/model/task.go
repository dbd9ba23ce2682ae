package model

import (
	"time"
)

type TaskStatus string // task lifecycle state

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null;index" json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);default:'todo'" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
