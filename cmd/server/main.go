package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoreau/taskhive-backend/config"
	"github.com/jmoreau/taskhive-backend/internal/app/controller"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	"github.com/jmoreau/taskhive-backend/internal/db"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
	"github.com/jmoreau/taskhive-backend/internal/router"
	"github.com/jmoreau/taskhive-backend/internal/scheduler"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"github.com/jmoreau/taskhive-backend/pkg/mailer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting TaskHive Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())
	projectRepo := repository.NewProjectRepository(db.GetDB())
	taskRepo := repository.NewTaskRepository(db.GetDB())

	// Initialize mailer
	m := mailer.New(mailer.Config{
		Host:         cfg.SMTP.Host,
		Port:         cfg.SMTP.Port,
		Username:     cfg.SMTP.Username,
		Password:     cfg.SMTP.Password,
		From:         cfg.SMTP.From,
		FromName:     cfg.SMTP.FromName,
		UseTLS:       cfg.SMTP.UseTLS,
		ResetBaseURL: cfg.SMTP.ResetBaseURL,
	})

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	passwordResetService := service.NewPasswordResetService(resetRepo, userRepo, m, db.GetDB())
	projectService := service.NewProjectService(projectRepo)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	statsService := service.NewStatsService(userRepo, projectRepo, taskRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	projectController := controller.NewProjectController(projectService)
	taskController := controller.NewTaskController(taskService)
	statsController := controller.NewStatsController(statsService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Start background token cleanup
	cleanupScheduler := scheduler.NewTokenCleanupScheduler(resetRepo)
	if err := cleanupScheduler.Start(); err != nil {
		logger.Fatal("Failed to start token cleanup scheduler", err)
	}
	defer cleanupScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		projectController,
		taskController,
		statsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
