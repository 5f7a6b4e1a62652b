package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

type MCQHandler struct {
	BaseHandler
	service services.MCQService
}

func NewMCQHandler(service services.MCQService, logger utils.Logger) *MCQHandler {
	return &MCQHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateMCQ creates a new multiple-choice question
func (h *MCQHandler) CreateMCQ(c *gin.Context) {
	var req services.CreateMCQRequest
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

	response, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetMCQ retrieves an MCQ by ID
func (h *MCQHandler) GetMCQ(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateMCQ updates an MCQ
func (h *MCQHandler) UpdateMCQ(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateMCQRequest
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

	response, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteMCQ deletes an MCQ
func (h *MCQHandler) DeleteMCQ(c *gin.Context) {
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

// ListMCQs lists MCQs with filtering
func (h *MCQHandler) ListMCQs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseMCQFilters(c)

	response, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchMCQs searches MCQs by title
func (h *MCQHandler) SearchMCQs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	filters := h.parseMCQFilters(c)

	response, err := h.service.Search(c.Request.Context(), query, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MCQHandler) parseMCQFilters(c *gin.Context) repositories.MCQFilters {
	filters := repositories.MCQFilters{}

	filters.Limit, filters.Offset = parsePagination(c, 10, 100)

	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.DifficultyLevel(difficulty)
		filters.Difficulty = &d
	}

	if categoryID := c.Query("category_id"); categoryID != "" {
		if id, err := uuid.Parse(categoryID); err == nil {
			filters.CategoryID = &id
		}
	}

	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	filters.IsActive = parseBoolQuery(c, "is_active")

	if sortBy := c.Query("sort_by"); sortBy == "created_at" || sortBy == "updated_at" || sortBy == "title" {
		filters.SortBy = sortBy
	}

	if sortOrder := c.Query("sort_order"); sortOrder == "asc" || sortOrder == "desc" {
		filters.SortOrder = sortOrder
	}

	return filters
}
