package service

import (
	"errors"
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// TaskUpdate carries the optional fields of a task update. Nil means keep
// the current value, which lets callers clear the due date explicitly.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *model.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

type TaskService interface {
	CreateTask(ownerID, projectID uint, title, description string, status model.TaskStatus, dueDate *time.Time) (*model.Task, error)
	GetProjectTasks(ownerID, projectID uint, status *model.TaskStatus) ([]model.Task, error)
	GetTaskByID(ownerID, taskID uint) (*model.Task, error)
	UpdateTask(ownerID, taskID uint, update TaskUpdate) (*model.Task, error)
	DeleteTask(ownerID, taskID uint) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// ownedProject loads a project and verifies ownership, hiding projects that
// belong to other users behind a not found error.
func (s *taskService) ownedProject(ownerID, projectID uint) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// ownedTask loads a task and verifies the parent project belongs to ownerID.
func (s *taskService) ownedTask(ownerID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if _, err := s.ownedProject(ownerID, task.ProjectID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

func (s *taskService) CreateTask(ownerID, projectID uint, title, description string, status model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
	if _, err := s.ownedProject(ownerID, projectID); err != nil {
		return nil, err
	}

	if status == "" {
		status = model.TaskStatusTodo
	}
	if !model.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		ProjectID:   projectID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		logger.Error("Failed to create task", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, err
	}

	logger.Info("Task created successfully", map[string]interface{}{
		"task_id":    task.ID,
		"project_id": projectID,
		"status":     task.Status,
	})

	return task, nil
}

func (s *taskService) GetProjectTasks(ownerID, projectID uint, status *model.TaskStatus) ([]model.Task, error) {
	if _, err := s.ownedProject(ownerID, projectID); err != nil {
		return nil, err
	}
	if status != nil && !model.ValidTaskStatus(*status) {
		return nil, ErrInvalidTaskStatus
	}
	return s.taskRepo.FindByProjectID(projectID, status)
}

func (s *taskService) GetTaskByID(ownerID, taskID uint) (*model.Task, error) {
	return s.ownedTask(ownerID, taskID)
}

func (s *taskService) UpdateTask(ownerID, taskID uint, update TaskUpdate) (*model.Task, error) {
	task, err := s.ownedTask(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		if !model.ValidTaskStatus(*update.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *update.Status
	}
	if update.ClearDueDate {
		task.DueDate = nil
	} else if update.DueDate != nil {
		task.DueDate = update.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		logger.Error("Failed to update task", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	logger.Info("Task updated successfully", map[string]interface{}{
		"task_id": task.ID,
		"status":  task.Status,
	})

	return task, nil
}

func (s *taskService) DeleteTask(ownerID, taskID uint) error {
	task, err := s.ownedTask(ownerID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		logger.Error("Failed to delete task", err, map[string]interface{}{
			"task_id": taskID,
		})
		return err
	}

	logger.Info("Task deleted successfully", map[string]interface{}{
		"task_id": taskID,
	})

	return nil
}
