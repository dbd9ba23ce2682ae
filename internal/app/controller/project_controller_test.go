package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	"github.com/jmoreau/taskhive-backend/internal/db"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
	"github.com/jmoreau/taskhive-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProjectControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	projectRepo := repository.NewProjectRepository(testDB)
	taskRepo := repository.NewTaskRepository(testDB)

	projectCtrl := NewProjectController(service.NewProjectService(projectRepo))
	taskCtrl := NewTaskController(service.NewTaskService(taskRepo, projectRepo))
	statsCtrl := NewStatsController(service.NewStatsService(userRepo, projectRepo, taskRepo))

	authMW := middleware.NewAuthMiddleware("test-secret", userRepo)

	router := gin.New()
	authed := router.Group("/", authMW.Authenticate())
	{
		authed.POST("/projects", projectCtrl.CreateProject)
		authed.GET("/projects", projectCtrl.ListProjects)
		authed.GET("/projects/:id", projectCtrl.GetProject)
		authed.PUT("/projects/:id", projectCtrl.UpdateProject)
		authed.DELETE("/projects/:id", projectCtrl.DeleteProject)
		authed.POST("/projects/:id/tasks", taskCtrl.CreateTask)
		authed.GET("/projects/:id/tasks", taskCtrl.ListProjectTasks)
		authed.GET("/tasks/:id", taskCtrl.GetTask)
		authed.PUT("/tasks/:id", taskCtrl.UpdateTask)
		authed.DELETE("/tasks/:id", taskCtrl.DeleteTask)
		authed.GET("/stats", statsCtrl.GetStats)
	}

	return router, testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, username, email string) (*model.User, string) {
	user := &model.User{Username: username, Email: email, PasswordHash: "hash"}
	require.NoError(t, testDB.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, "test-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	return user, tokens.AccessToken
}

func authedRequest(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProjectController_CRUD(t *testing.T) {
	router, testDB := setupProjectControllerTest(t)
	defer db.CleanupTestDB(testDB)

	_, token := createTestUser(t, testDB, "alice", "alice@example.com")

	// Create
	w := authedRequest(router, "POST", "/projects", token, CreateProjectRequest{
		Title:       "Website redesign",
		Description: "Refresh the marketing site",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	projectID := uint(createResp["project"].(map[string]interface{})["id"].(float64))

	// Read
	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d", projectID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Update
	newTitle := "Website redesign v2"
	w = authedRequest(router, "PUT", fmt.Sprintf("/projects/%d", projectID), token, UpdateProjectRequest{
		Title: &newTitle,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updateResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updateResp))
	assert.Equal(t, newTitle, updateResp["project"].(map[string]interface{})["title"])

	// Delete
	w = authedRequest(router, "DELETE", fmt.Sprintf("/projects/%d", projectID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d", projectID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectController_OwnershipIsolation(t *testing.T) {
	router, testDB := setupProjectControllerTest(t)
	defer db.CleanupTestDB(testDB)

	_, aliceToken := createTestUser(t, testDB, "alice", "alice@example.com")
	_, bobToken := createTestUser(t, testDB, "bob", "bob@example.com")

	w := authedRequest(router, "POST", "/projects", aliceToken, CreateProjectRequest{Title: "Private"})
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	projectID := uint(createResp["project"].(map[string]interface{})["id"].(float64))

	// Bob cannot see, update or delete Alice's project
	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d", projectID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = authedRequest(router, "DELETE", fmt.Sprintf("/projects/%d", projectID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bob's project list stays empty
	w = authedRequest(router, "GET", "/projects", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, float64(0), listResp["count"])
}

func TestProjectController_InvalidID(t *testing.T) {
	router, testDB := setupProjectControllerTest(t)
	defer db.CleanupTestDB(testDB)

	_, token := createTestUser(t, testDB, "alice", "alice@example.com")

	w := authedRequest(router, "GET", "/projects/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_INVALID_ID", resp["error"])
}

func TestTaskController_Flow(t *testing.T) {
	router, testDB := setupProjectControllerTest(t)
	defer db.CleanupTestDB(testDB)

	_, token := createTestUser(t, testDB, "alice", "alice@example.com")

	w := authedRequest(router, "POST", "/projects", token, CreateProjectRequest{Title: "Alpha"})
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	projectID := uint(createResp["project"].(map[string]interface{})["id"].(float64))

	// Create task with default status
	w = authedRequest(router, "POST", fmt.Sprintf("/projects/%d/tasks", projectID), token, CreateTaskRequest{
		Title: "Write docs",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var taskResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &taskResp))
	task := taskResp["task"].(map[string]interface{})
	taskID := uint(task["id"].(float64))
	assert.Equal(t, "todo", task["status"])

	// Invalid status rejected
	w = authedRequest(router, "POST", fmt.Sprintf("/projects/%d/tasks", projectID), token, CreateTaskRequest{
		Title:  "Bad",
		Status: "archived",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Move the task along
	status := "done"
	w = authedRequest(router, "PUT", fmt.Sprintf("/tasks/%d", taskID), token, UpdateTaskRequest{
		Status: &status,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// List shows one task
	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d/tasks", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, float64(1), listResp["count"])

	// Status filter
	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d/tasks?status=done", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, float64(1), listResp["count"])

	w = authedRequest(router, "GET", fmt.Sprintf("/projects/%d/tasks?status=todo", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, float64(0), listResp["count"])

	// Delete
	w = authedRequest(router, "DELETE", fmt.Sprintf("/tasks/%d", taskID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsController_GetStats(t *testing.T) {
	router, testDB := setupProjectControllerTest(t)
	defer db.CleanupTestDB(testDB)

	user, token := createTestUser(t, testDB, "alice", "alice@example.com")

	project := &model.Project{Title: "Alpha", OwnerID: user.ID}
	require.NoError(t, testDB.Create(project).Error)

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, testDB.Create(&model.Task{
		Title: "Overdue", ProjectID: project.ID, Status: model.TaskStatusTodo, DueDate: &past,
	}).Error)

	w := authedRequest(router, "GET", "/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(1), stats["total_projects"])
	assert.Equal(t, float64(1), stats["total_tasks"])
	assert.Equal(t, float64(1), stats["overdue_tasks"])
	assert.NotNil(t, stats["latest_project"])
}
