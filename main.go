package main

import (
	"log"

	"edutest/config"
	"edutest/handlers"
	"edutest/middleware"
	"edutest/models"
	"edutest/routes"
	"edutest/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.ClassStudent{},
		&models.Test{},
		&models.Question{},
		&models.Passage{},
		&models.Assignment{},
		&models.Submission{},
		&models.Answer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize the monitor hub for staff dashboards
	hub := services.NewMonitorHub()
	go hub.Run()

	// Initialize services
	roster := services.NewDBRoster(db)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	testService := services.NewTestService(db)
	assignmentService := services.NewAssignmentService(db, roster)
	submissionService := services.NewSubmissionService(db, redisClient, assignmentService, hub)
	gradingService := services.NewGradingService(db, hub)
	resultsService := services.NewResultsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	testHandler := handlers.NewTestHandler(testService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, gradingService)
	resultsHandler := handlers.NewResultsHandler(resultsService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, testHandler, assignmentHandler, submissionHandler, resultsHandler, hub, testService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
