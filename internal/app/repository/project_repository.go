package repository

import (
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id uint) (*model.Project, error)
	FindByIDWithTasks(id uint) (*model.Project, error)
	FindByOwnerID(ownerID uint, offset, limit int) ([]model.Project, error)
	CountByOwnerID(ownerID uint) (int64, error)
	FindLatestByOwnerID(ownerID uint) (*model.Project, error)
	Update(project *model.Project) error
	Delete(id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	logger.Debug("Creating project in database", map[string]interface{}{
		"owner_id": project.OwnerID,
		"title":    project.Title,
	})

	if err := r.db.Create(project).Error; err != nil {
		logger.Error("Failed to create project in database", err, map[string]interface{}{
			"owner_id": project.OwnerID,
		})
		return err
	}

	return nil
}

func (r *projectRepository) FindByID(id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, id).Error; err != nil {
		logger.Error("Failed to find project by ID in database", err, map[string]interface{}{
			"project_id": id,
		})
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByIDWithTasks(id uint) (*model.Project, error) {
	var project model.Project
	err := r.db.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("tasks.created_at ASC")
	}).First(&project, id).Error
	if err != nil {
		logger.Error("Failed to find project with tasks in database", err, map[string]interface{}{
			"project_id": id,
		})
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByOwnerID(ownerID uint, offset, limit int) ([]model.Project, error) {
	var projects []model.Project
	query := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&projects).Error
	if err != nil {
		logger.Error("Failed to find projects by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) CountByOwnerID(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Project{}).Where("owner_id = ?", ownerID).Count(&count).Error
	if err != nil {
		logger.Error("Failed to count projects by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return 0, err
	}
	return count, nil
}

func (r *projectRepository) FindLatestByOwnerID(ownerID uint) (*model.Project, error) {
	var project model.Project
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) Update(project *model.Project) error {
	logger.Debug("Updating project in database", map[string]interface{}{
		"project_id": project.ID,
	})

	if err := r.db.Save(project).Error; err != nil {
		logger.Error("Failed to update project in database", err, map[string]interface{}{
			"project_id": project.ID,
		})
		return err
	}

	return nil
}

func (r *projectRepository) Delete(id uint) error {
	logger.Debug("Deleting project from database", map[string]interface{}{
		"project_id": id,
	})

	if err := r.db.Select("Tasks").Delete(&model.Project{ID: id}).Error; err != nil {
		logger.Error("Failed to delete project from database", err, map[string]interface{}{
			"project_id": id,
		})
		return err
	}

	return nil
}
