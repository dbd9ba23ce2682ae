package service

import (
	"errors"
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserStats aggregates a user's workspace activity for the dashboard.
type UserStats struct {
	UserSince     time.Time                  `json:"user_since"`
	TotalProjects int64                      `json:"total_projects"`
	TotalTasks    int64                      `json:"total_tasks"`
	TasksByStatus map[model.TaskStatus]int64 `json:"tasks_by_status"`
	OverdueTasks  int64                      `json:"overdue_tasks"`
	LatestProject *model.Project             `json:"latest_project"`
}

type StatsService interface {
	GetUserStats(userID uint) (*UserStats, error)
}

type statsService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

func NewStatsService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
) StatsService {
	return &statsService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (s *statsService) GetUserStats(userID uint) (*UserStats, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	totalProjects, err := s.projectRepo.CountByOwnerID(userID)
	if err != nil {
		return nil, err
	}

	totalTasks, err := s.taskRepo.CountByOwnerID(userID)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.TaskStatus]int64, 3)
	for _, status := range []model.TaskStatus{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone} {
		count, err := s.taskRepo.CountByOwnerIDAndStatus(userID, status)
		if err != nil {
			return nil, err
		}
		byStatus[status] = count
	}

	overdue, err := s.taskRepo.CountOverdueByOwnerID(userID, time.Now())
	if err != nil {
		return nil, err
	}

	latest, err := s.projectRepo.FindLatestByOwnerID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	logger.Debug("User stats computed", map[string]interface{}{
		"user_id":        userID,
		"total_projects": totalProjects,
		"total_tasks":    totalTasks,
	})

	return &UserStats{
		UserSince:     user.CreatedAt,
		TotalProjects: totalProjects,
		TotalTasks:    totalTasks,
		TasksByStatus: byStatus,
		OverdueTasks:  overdue,
		LatestProject: latest,
	}, nil
}
