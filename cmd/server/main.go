package main

import (
	"context"
	"log"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/config"
	"github.com/aorus88/TaskFlow-sub000/internal/database"
	"github.com/aorus88/TaskFlow-sub000/internal/handlers"
	"github.com/aorus88/TaskFlow-sub000/internal/middleware"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/aorus88/TaskFlow-sub000/internal/timer"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.MigrateDatabase(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Wire repositories and services
	taskRepo := repository.NewTaskRepository(database.GetDB())
	sessionService := services.NewSessionService(taskRepo)
	archiveService := services.NewArchiveService(taskRepo, time.Duration(cfg.ArchiveGraceSeconds)*time.Second)
	habitService := services.NewHabitService(taskRepo)

	// One countdown machine per process; its ticks run off the wall clock.
	machine := timer.NewMachine(sessionService, cfg.TimerMinutes)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go machine.Run(ctx, time.Minute)

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskRepo, archiveService)
	subtaskHandler := handlers.NewSubtaskHandler(taskRepo, archiveService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	archiveHandler := handlers.NewArchiveHandler(archiveService)
	timerHandler := handlers.NewTimerHandler(machine)
	habitHandler := handlers.NewHabitHandler(habitService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TaskFlow API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTask(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTask(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTask(), taskHandler.DeleteTask)

			tasks.POST("/:id/archive", middleware.RequireTask(), archiveHandler.ArchiveTask)
			tasks.DELETE("/:id/archive", middleware.RequireTask(), archiveHandler.CancelArchive)

			tasks.POST("/:id/subtasks", middleware.RequireTask(), subtaskHandler.AddSubtask)
			tasks.PATCH("/:id/subtasks/:subtask_id", middleware.RequireTask(), subtaskHandler.UpdateSubtaskStatus)
			tasks.DELETE("/:id/subtasks/:subtask_id", middleware.RequireTask(), subtaskHandler.DeleteSubtask)

			tasks.POST("/:id/sessions", middleware.RequireTask(), sessionHandler.AddSession)
			tasks.DELETE("/:id/sessions/:session_id", middleware.RequireTask(), sessionHandler.DeleteSession)
		}

		timerRoutes := api.Group("/timer")
		{
			timerRoutes.GET("", timerHandler.GetTimer)
			timerRoutes.POST("/configure", timerHandler.Configure)
			timerRoutes.POST("/start", timerHandler.Start)
			timerRoutes.POST("/pause", timerHandler.Pause)
			timerRoutes.POST("/resume", timerHandler.Resume)
			timerRoutes.POST("/stop", timerHandler.Stop)
			timerRoutes.POST("/tick", timerHandler.Tick)
		}

		habits := api.Group("/habits")
		{
			habits.POST("/regenerate", habitHandler.Regenerate)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
