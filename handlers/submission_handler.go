package handlers

import (
	"net/http"

	"edutest/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	gradingService    *services.GradingService
}

func NewSubmissionHandler(submissionService *services.SubmissionService, gradingService *services.GradingService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		gradingService:    gradingService,
	}
}

func (h *SubmissionHandler) StartTest(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.StartTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.Start(testID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission_id": submission.ID,
		"submission":    submission,
	})
}

func (h *SubmissionHandler) SaveProgress(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.submissionService.SaveProgress(submissionID, &req); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Progress saved"})
}

func (h *SubmissionHandler) SubmitTest(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.Submit(submissionID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.gradingService.GradeSubmission(submissionID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.submissionService.GetSubmission(submissionID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) GetTestSubmissions(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissionService.GetTestSubmissions(testID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

func (h *SubmissionHandler) GetStudentSubmissions(c *gin.Context) {
	studentID, ok := idParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissionService.GetStudentSubmissions(studentID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}
