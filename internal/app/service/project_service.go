package service

import (
	"errors"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectService interface {
	CreateProject(ownerID uint, title, description string) (*model.Project, error)
	GetUserProjects(ownerID uint, skip, limit int) ([]model.Project, error)
	GetProjectByID(ownerID, projectID uint) (*model.Project, error)
	UpdateProject(ownerID, projectID uint, title, description *string) (*model.Project, error)
	DeleteProject(ownerID, projectID uint) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
}

func NewProjectService(projectRepo repository.ProjectRepository) ProjectService {
	return &projectService{projectRepo: projectRepo}
}

func (s *projectService) CreateProject(ownerID uint, title, description string) (*model.Project, error) {
	logger.Info("Creating project", map[string]interface{}{
		"owner_id": ownerID,
		"title":    title,
	})

	project := &model.Project{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		logger.Error("Failed to create project", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Project created successfully", map[string]interface{}{
		"project_id": project.ID,
		"owner_id":   ownerID,
	})

	return project, nil
}

func (s *projectService) GetUserProjects(ownerID uint, skip, limit int) ([]model.Project, error) {
	return s.projectRepo.FindByOwnerID(ownerID, skip, limit)
}

// GetProjectByID returns the project with its tasks. Projects owned by other
// users come back as not found, the same as missing ones.
func (s *projectService) GetProjectByID(ownerID, projectID uint) (*model.Project, error) {
	project, err := s.projectRepo.FindByIDWithTasks(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if project.OwnerID != ownerID {
		logger.Warn("Project access denied", map[string]interface{}{
			"project_id":   projectID,
			"owner_id":     project.OwnerID,
			"requester_id": ownerID,
		})
		return nil, ErrProjectNotFound
	}

	return project, nil
}

func (s *projectService) UpdateProject(ownerID, projectID uint, title, description *string) (*model.Project, error) {
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

	if title != nil {
		project.Title = *title
	}
	if description != nil {
		project.Description = *description
	}

	if err := s.projectRepo.Update(project); err != nil {
		logger.Error("Failed to update project", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, err
	}

	logger.Info("Project updated successfully", map[string]interface{}{
		"project_id": project.ID,
		"owner_id":   ownerID,
	})

	return project, nil
}

func (s *projectService) DeleteProject(ownerID, projectID uint) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if project.OwnerID != ownerID {
		return ErrProjectNotFound
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		logger.Error("Failed to delete project", err, map[string]interface{}{
			"project_id": projectID,
		})
		return err
	}

	logger.Info("Project deleted successfully", map[string]interface{}{
		"project_id": projectID,
		"owner_id":   ownerID,
	})

	return nil
}
