package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/config"
	"github.com/jmoreau/taskhive-backend/internal/app/controller"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	projectController *controller.ProjectController
	taskController    *controller.TaskController
	statsController   *controller.StatsController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	projectController *controller.ProjectController,
	taskController *controller.TaskController,
	statsController *controller.StatsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		projectController: projectController,
		taskController:    taskController,
		statsController:   statsController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TaskHive API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.GET("/reset-password/validate", r.authController.ValidateResetToken)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		v1.GET("/task-statuses", r.taskController.ListTaskStatuses)

		authed := v1.Group("", r.authMiddleware.Authenticate())
		{
			projects := authed.Group("/projects")
			{
				projects.POST("", r.projectController.CreateProject)
				projects.GET("", r.projectController.ListProjects)
				projects.GET("/:id", r.projectController.GetProject)
				projects.PUT("/:id", r.projectController.UpdateProject)
				projects.DELETE("/:id", r.projectController.DeleteProject)

				projects.POST("/:id/tasks", r.taskController.CreateTask)
				projects.GET("/:id/tasks", r.taskController.ListProjectTasks)
			}

			tasks := authed.Group("/tasks")
			{
				tasks.GET("/:id", r.taskController.GetTask)
				tasks.PUT("/:id", r.taskController.UpdateTask)
				tasks.DELETE("/:id", r.taskController.DeleteTask)
			}

			authed.GET("/stats", r.statsController.GetStats)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
