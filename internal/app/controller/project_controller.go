package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	apperrors "github.com/jmoreau/taskhive-backend/internal/errors"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
)

type ProjectController struct {
	projectService service.ProjectService
}

func NewProjectController(projectService service.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
}

// parseIDParam reads a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// CreateProject creates a project for the authenticated user
// POST /api/v1/projects
func (ctrl *ProjectController) CreateProject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid project data")
		return
	}

	project, err := ctrl.projectService.CreateProject(userID, req.Title, req.Description)
	if err != nil {
		log.Error("Failed to create project", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create project")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"project": project,
	})
}

// ListProjects lists the authenticated user's projects
// GET /api/v1/projects?skip=0&limit=100
func (ctrl *ProjectController) ListProjects(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 100)

	projects, err := ctrl.projectService.GetUserProjects(userID, skip, limit)
	if err != nil {
		log.Error("Failed to list projects", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject returns one project with its tasks
// GET /api/v1/projects/:id
func (ctrl *ProjectController) GetProject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, err := ctrl.projectService.GetProjectByID(userID, projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			apperrors.NotFound(c, apperrors.ProjectNotFound, "Project not found")
			return
		}
		log.Error("Failed to fetch project", err, map[string]interface{}{
			"project_id": projectID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

// UpdateProject updates title and/or description
// PUT /api/v1/projects/:id
func (ctrl *ProjectController) UpdateProject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid project data")
		return
	}

	project, err := ctrl.projectService.UpdateProject(userID, projectID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			apperrors.NotFound(c, apperrors.ProjectNotFound, "Project not found")
			return
		}
		log.Error("Failed to update project", err, map[string]interface{}{
			"project_id": projectID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

// DeleteProject deletes a project and its tasks
// DELETE /api/v1/projects/:id
func (ctrl *ProjectController) DeleteProject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.projectService.DeleteProject(userID, projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			apperrors.NotFound(c, apperrors.ProjectNotFound, "Project not found")
			return
		}
		log.Error("Failed to delete project", err, map[string]interface{}{
			"project_id": projectID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}
