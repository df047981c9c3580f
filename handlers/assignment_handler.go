package handlers

import (
	"net/http"

	"edutest/services"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) AssignTest(c *gin.Context) {
	userID, userType, ok := principal(c)
	if !ok {
		return
	}

	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.AssignTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments, err := h.assignmentService.AssignTest(testID, userID, userType, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignments)
}

func (h *AssignmentHandler) GetAssignedTests(c *gin.Context) {
	targetType := c.Param("type")
	targetID, ok := idParam(c, "id")
	if !ok {
		return
	}

	tests, err := h.assignmentService.GetAssignedTests(targetType, targetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}
