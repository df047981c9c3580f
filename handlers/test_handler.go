package handlers

import (
	"net/http"

	"edutest/services"

	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	testService *services.TestService
}

func NewTestHandler(testService *services.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

func (h *TestHandler) CreateTest(c *gin.Context) {
	userID, userType, ok := principal(c)
	if !ok {
		return
	}

	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.CreateTest(userID, userType, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

func (h *TestHandler) GetTests(c *gin.Context) {
	centerID := uint(0)
	if v, exists := c.Get("center_id"); exists {
		centerID = v.(uint)
	}

	tests, err := h.testService.GetTests(centerID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

func (h *TestHandler) GetTestByID(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.GetTestByID(testID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

func (h *TestHandler) UpdateTest(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.UpdateTest(testID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

func (h *TestHandler) DeleteTest(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.testService.DeleteTest(testID); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test deleted successfully"})
}

func (h *TestHandler) ActivateTest(c *gin.Context) {
	h.setActive(c, true)
}

func (h *TestHandler) DeactivateTest(c *gin.Context) {
	h.setActive(c, false)
}

func (h *TestHandler) setActive(c *gin.Context, active bool) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.SetActive(testID, active)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

func (h *TestHandler) AddQuestion(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.testService.AddQuestion(testID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *TestHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.testService.UpdateQuestion(questionID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.testService.DeleteQuestion(questionID); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

func (h *TestHandler) AddPassage(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreatePassageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passage, err := h.testService.AddPassage(testID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, passage)
}

func (h *TestHandler) UpdatePassage(c *gin.Context) {
	passageID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.CreatePassageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passage, err := h.testService.UpdatePassage(passageID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, passage)
}

func (h *TestHandler) DeletePassage(c *gin.Context) {
	passageID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.testService.DeletePassage(passageID); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Passage deleted successfully"})
}
