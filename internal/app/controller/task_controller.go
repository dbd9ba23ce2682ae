package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	apperrors "github.com/jmoreau/taskhive-backend/internal/errors"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
)

type TaskController struct {
	taskService service.TaskService
}

func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// CreateTask adds a task to a project
// POST /api/v1/projects/:id/tasks
func (ctrl *TaskController) CreateTask(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid task data")
		return
	}

	task, err := ctrl.taskService.CreateTask(userID, projectID, req.Title, req.Description, model.TaskStatus(req.Status), req.DueDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			apperrors.NotFound(c, apperrors.ProjectNotFound, "Project not found")
		case errors.Is(err, service.ErrInvalidTaskStatus):
			apperrors.BadRequest(c, apperrors.TaskInvalidStatus, "Status must be one of: todo, in_progress, done")
		default:
			log.Error("Failed to create task", err, map[string]interface{}{
				"project_id": projectID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create task")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"task": task,
	})
}

// ListProjectTasks lists the tasks of one project
// GET /api/v1/projects/:id/tasks?status=todo
func (ctrl *TaskController) ListProjectTasks(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var statusFilter *model.TaskStatus
	if raw := c.Query("status"); raw != "" {
		status := model.TaskStatus(raw)
		statusFilter = &status
	}

	tasks, err := ctrl.taskService.GetProjectTasks(userID, projectID, statusFilter)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			apperrors.NotFound(c, apperrors.ProjectNotFound, "Project not found")
			return
		}
		if errors.Is(err, service.ErrInvalidTaskStatus) {
			apperrors.BadRequest(c, apperrors.TaskInvalidStatus, "Status must be one of: todo, in_progress, done")
			return
		}
		log.Error("Failed to list tasks", err, map[string]interface{}{
			"project_id": projectID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTask returns a single task
// GET /api/v1/tasks/:id
func (ctrl *TaskController) GetTask(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := ctrl.taskService.GetTaskByID(userID, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			apperrors.NotFound(c, apperrors.TaskNotFound, "Task not found")
			return
		}
		log.Error("Failed to fetch task", err, map[string]interface{}{
			"task_id": taskID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task": task,
	})
}

// UpdateTask updates task fields
// PUT /api/v1/tasks/:id
func (ctrl *TaskController) UpdateTask(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid task data")
		return
	}

	update := service.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		update.Status = &status
	}

	task, err := ctrl.taskService.UpdateTask(userID, taskID, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			apperrors.NotFound(c, apperrors.TaskNotFound, "Task not found")
		case errors.Is(err, service.ErrInvalidTaskStatus):
			apperrors.BadRequest(c, apperrors.TaskInvalidStatus, "Status must be one of: todo, in_progress, done")
		default:
			log.Error("Failed to update task", err, map[string]interface{}{
				"task_id": taskID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update task")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task": task,
	})
}

// DeleteTask removes a task
// DELETE /api/v1/tasks/:id
func (ctrl *TaskController) DeleteTask(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.taskService.DeleteTask(userID, taskID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			apperrors.NotFound(c, apperrors.TaskNotFound, "Task not found")
			return
		}
		log.Error("Failed to delete task", err, map[string]interface{}{
			"task_id": taskID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ListTaskStatuses returns the allowed task status values
// GET /api/v1/task-statuses
func (ctrl *TaskController) ListTaskStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses": []model.TaskStatus{
			model.TaskStatusTodo,
			model.TaskStatusInProgress,
			model.TaskStatusDone,
		},
	})
}
