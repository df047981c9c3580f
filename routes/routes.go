package routes

import (
	"log"
	"net/http"
	"strconv"

	"edutest/handlers"
	"edutest/middleware"
	"edutest/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	testHandler *handlers.TestHandler,
	assignmentHandler *handlers.AssignmentHandler,
	submissionHandler *handlers.SubmissionHandler,
	resultsHandler *handlers.ResultsHandler,
	hub *services.MonitorHub,
	testService *services.TestService,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			tests := protected.Group("/tests")
			{
				tests.GET("", testHandler.GetTests)
				tests.POST("", testHandler.CreateTest)

				// Submission lookups before the :id routes so the literal
				// segments win over the wildcard.
				tests.GET("/submissions/:id", submissionHandler.GetSubmission)
				tests.POST("/submissions/:id/progress", submissionHandler.SaveProgress)
				tests.POST("/submissions/:id/submit", submissionHandler.SubmitTest)
				tests.POST("/submissions/:id/grade", submissionHandler.GradeSubmission)

				tests.GET("/assigned/:type/:id", assignmentHandler.GetAssignedTests)
				tests.GET("/student/:id/submissions", submissionHandler.GetStudentSubmissions)
				tests.GET("/student/:id/results", resultsHandler.GetStudentResults)

				tests.PUT("/questions/:id", testHandler.UpdateQuestion)
				tests.DELETE("/questions/:id", testHandler.DeleteQuestion)
				tests.PUT("/passages/:id", testHandler.UpdatePassage)
				tests.DELETE("/passages/:id", testHandler.DeletePassage)

				tests.GET("/:id", testHandler.GetTestByID)
				tests.PUT("/:id", testHandler.UpdateTest)
				tests.DELETE("/:id", testHandler.DeleteTest)
				tests.PATCH("/:id/activate", testHandler.ActivateTest)
				tests.PATCH("/:id/deactivate", testHandler.DeactivateTest)
				tests.POST("/:id/questions", testHandler.AddQuestion)
				tests.POST("/:id/passages", testHandler.AddPassage)
				tests.POST("/:id/assign", assignmentHandler.AssignTest)
				tests.POST("/:id/start", submissionHandler.StartTest)
				tests.GET("/:id/submissions", submissionHandler.GetTestSubmissions)
				tests.GET("/:id/results", resultsHandler.GetTestResults)
			}
		}
	}

	// WebSocket endpoint for staff watching a test's submission activity
	router.GET("/ws/tests/:id/monitor", func(c *gin.Context) {
		testIDStr := c.Param("id")
		testID, err := strconv.ParseUint(testIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID"})
			return
		}

		// The test must exist before a dashboard can watch it.
		if _, err := testService.GetTestByID(uint(testID)); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for test %s monitor: %v", testIDStr, err)
			return
		}

		log.Printf("Monitor connection established for test %s", testIDStr)
		hub.RegisterClient(conn, uint(testID))
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
