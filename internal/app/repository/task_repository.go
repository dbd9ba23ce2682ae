package repository

import (
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(task *model.Task) error
	FindByID(id uint) (*model.Task, error)
	FindByProjectID(projectID uint, status *model.TaskStatus) ([]model.Task, error)
	CountByOwnerID(ownerID uint) (int64, error)
	CountByOwnerIDAndStatus(ownerID uint, status model.TaskStatus) (int64, error)
	CountOverdueByOwnerID(ownerID uint, now time.Time) (int64, error)
	Update(task *model.Task) error
	Delete(id uint) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *model.Task) error {
	logger.Debug("Creating task in database", map[string]interface{}{
		"project_id": task.ProjectID,
		"title":      task.Title,
	})

	if err := r.db.Create(task).Error; err != nil {
		logger.Error("Failed to create task in database", err, map[string]interface{}{
			"project_id": task.ProjectID,
		})
		return err
	}

	return nil
}

func (r *taskRepository) FindByID(id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.First(&task, id).Error; err != nil {
		logger.Error("Failed to find task by ID in database", err, map[string]interface{}{
			"task_id": id,
		})
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByProjectID(projectID uint, status *model.TaskStatus) ([]model.Task, error) {
	var tasks []model.Task
	query := r.db.Where("project_id = ?", projectID).Order("created_at ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Find(&tasks).Error
	if err != nil {
		logger.Error("Failed to find tasks by project in database", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountByOwnerID(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count tasks by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) CountByOwnerIDAndStatus(ownerID uint, status model.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ? AND tasks.status = ?", ownerID, status).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count tasks by owner and status in database", err, map[string]interface{}{
			"owner_id": ownerID,
			"status":   status,
		})
		return 0, err
	}
	return count, nil
}

// CountOverdueByOwnerID counts unfinished tasks whose due date has passed.
func (r *taskRepository) CountOverdueByOwnerID(ownerID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ? AND tasks.due_date IS NOT NULL AND tasks.due_date < ? AND tasks.status <> ?",
			ownerID, now, model.TaskStatusDone).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count overdue tasks by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) Update(task *model.Task) error {
	logger.Debug("Updating task in database", map[string]interface{}{
		"task_id": task.ID,
	})

	if err := r.db.Save(task).Error; err != nil {
		logger.Error("Failed to update task in database", err, map[string]interface{}{
			"task_id": task.ID,
		})
		return err
	}

	return nil
}

func (r *taskRepository) Delete(id uint) error {
	logger.Debug("Deleting task from database", map[string]interface{}{
		"task_id": id,
	})

	if err := r.db.Delete(&model.Task{}, id).Error; err != nil {
		logger.Error("Failed to delete task from database", err, map[string]interface{}{
			"task_id": id,
		})
		return err
	}

	return nil
}
