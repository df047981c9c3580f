package handlers

import (
	"net/http"

	"edutest/services"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	resultsService *services.ResultsService
}

func NewResultsHandler(resultsService *services.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsService: resultsService}
}

func (h *ResultsHandler) GetTestResults(c *gin.Context) {
	testID, ok := idParam(c, "id")
	if !ok {
		return
	}

	results, err := h.resultsService.GetTestResults(testID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *ResultsHandler) GetStudentResults(c *gin.Context) {
	studentID, ok := idParam(c, "id")
	if !ok {
		return
	}

	results, err := h.resultsService.GetStudentResults(studentID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
