package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abdbodara/taskora-backend/internal/config"
	"github.com/abdbodara/taskora-backend/internal/database"
	"github.com/abdbodara/taskora-backend/internal/handlers"
	"github.com/abdbodara/taskora-backend/internal/middleware"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
	"github.com/abdbodara/taskora-backend/internal/services"
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

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	technicianRepo := repository.NewTechnicianRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, technicianRepo, cfg.JWTSecret)
	userService := services.NewUserService(userRepo)
	technicianService := services.NewTechnicianService(technicianRepo)
	taskService := services.NewTaskService(taskRepo, technicianRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	technicianHandler := handlers.NewTechnicianHandler(technicianService, taskService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// Initialize Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskora API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/technician-login", authHandler.TechnicianLogin)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			admin := middleware.RequireRole(models.RoleAdmin)
			technician := middleware.RequireRole(models.RoleTechnician)

			tasks.GET("", admin, taskHandler.ListTasks)
			tasks.POST("", admin, taskHandler.CreateTask)
			tasks.GET("/:id", admin, taskHandler.GetTask)
			tasks.PUT("/:id", admin, taskHandler.UpdateTask)
			tasks.DELETE("/:id", admin, taskHandler.DeleteTask)
			tasks.PUT("/status/:id", technician, taskHandler.UpdateStatus)
			tasks.POST("/comments/:taskId", technician, commentHandler.AddComment)
			tasks.GET("/:id/comments", admin, commentHandler.ListComments)
		}

		// Technician routes (protected)
		technicians := api.Group("/technicians")
		technicians.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			admin := middleware.RequireRole(models.RoleAdmin)
			technician := middleware.RequireRole(models.RoleTechnician)

			technicians.GET("", admin, technicianHandler.ListTechnicians)
			technicians.POST("", admin, technicianHandler.CreateTechnician)
			technicians.GET("/assigned/tasks", technician, technicianHandler.ListAssignedTasks)
			technicians.GET("/:id", admin, technicianHandler.GetTechnician)
			technicians.PUT("/:id", admin, technicianHandler.UpdateTechnician)
			technicians.DELETE("/:id", admin, technicianHandler.DeleteTechnician)
			technicians.PUT("/change-password/:id", admin, technicianHandler.ChangePassword)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			admin := middleware.RequireRole(models.RoleAdmin)

			users.GET("/me", userHandler.GetCurrentUser)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("", admin, userHandler.ListUsers)
			users.GET("/:id", admin, userHandler.GetUser)
			users.PUT("/:id", admin, userHandler.UpdateUser)
			users.DELETE("/:id", admin, userHandler.DeleteUser)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
