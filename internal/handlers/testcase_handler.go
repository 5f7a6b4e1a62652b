package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

type TestCaseHandler struct {
	BaseHandler
	service services.TestCaseService
}

func NewTestCaseHandler(service services.TestCaseService, logger utils.Logger) *TestCaseHandler {
	return &TestCaseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateTestCase creates a test case for a question
func (h *TestCaseHandler) CreateTestCase(c *gin.Context) {
	var req services.CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	// Nested route carries the question ID in the path.
	if questionID := c.Param("id"); questionID != "" {
		id, err := uuid.Parse(questionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid id",
			})
			return
		}
		req.QuestionID = id
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	testCase, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, testCase)
}

// GetTestCase retrieves a test case by ID
func (h *TestCaseHandler) GetTestCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	testCase, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, testCase)
}

// UpdateTestCase updates a test case
func (h *TestCaseHandler) UpdateTestCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	testCase, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, testCase)
}

// DeleteTestCase deletes a test case
func (h *TestCaseHandler) DeleteTestCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTestCases lists test cases with filtering
func (h *TestCaseHandler) ListTestCases(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.TestCaseFilters{}
	filters.Limit, filters.Offset = parsePagination(c, 50, 200)

	if questionID := c.Query("question_id"); questionID != "" {
		if id, err := uuid.Parse(questionID); err == nil {
			filters.QuestionID = &id
		}
	}

	filters.IsSample = parseBoolQuery(c, "is_sample")
	filters.IsHidden = parseBoolQuery(c, "is_hidden")

	response, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuestionTestCases lists all test cases of a question
func (h *TestCaseHandler) GetQuestionTestCases(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	testCases, err := h.service.GetByQuestion(c.Request.Context(), questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"test_cases": testCases, "total": len(testCases)})
}

// DeleteQuestionTestCases removes all test cases of a question
func (h *TestCaseHandler) DeleteQuestionTestCases(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteByQuestion(c.Request.Context(), questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
