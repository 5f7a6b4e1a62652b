package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// CreateQuestion creates a new coding question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
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

// GetQuestion retrieves a question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
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

// GetQuestionWithDetails retrieves a question with its test cases
func (h *QuestionHandler) GetQuestionWithDetails(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	response, err := h.service.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateQuestion updates a question
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateQuestionRequest
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

// DeleteQuestion deletes a question
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
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

// ===== LIST AND SEARCH ENDPOINTS =====

// ListQuestions lists questions with filtering
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)

	response, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchQuestions searches questions by title, statement and tags
func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	filters := h.parseQuestionFilters(c)

	response, err := h.service.Search(c.Request.Context(), query, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuestionsByCreator lists questions created by a specific user
func (h *QuestionHandler) GetQuestionsByCreator(c *gin.Context) {
	creatorID := c.Param("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid creator_id",
		})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)

	response, err := h.service.GetByCreator(c.Request.Context(), creatorID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuestionUsageStats returns aggregate statistics for a creator's questions
func (h *QuestionHandler) GetQuestionUsageStats(c *gin.Context) {
	creatorID := c.Param("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid creator_id",
		})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.GetUsageStats(c.Request.Context(), creatorID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== PDF ENDPOINTS =====

// UploadStatementPDF replaces a question's statement with an uploaded PDF
func (h *QuestionHandler) UploadStatementPDF(c *gin.Context) {
	h.uploadPDF(c, h.service.UploadStatementPDF)
}

// UploadSolutionPDF attaches a solution PDF to a question
func (h *QuestionHandler) UploadSolutionPDF(c *gin.Context) {
	h.uploadPDF(c, h.service.UploadSolutionPDF)
}

func (h *QuestionHandler) uploadPDF(c *gin.Context, upload func(ctx context.Context, id uuid.UUID, data []byte, filename string, userID string) error) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	data, filename, ok := readUploadedFile(c)
	if !ok {
		return
	}

	if err := upload(c.Request.Context(), id, data, filename, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "uploaded"})
}

// GetStatementPDF serves a question's statement PDF
func (h *QuestionHandler) GetStatementPDF(c *gin.Context) {
	h.servePDF(c, h.service.GetStatementPDF)
}

// GetSolutionPDF serves a question's solution PDF
func (h *QuestionHandler) GetSolutionPDF(c *gin.Context) {
	h.servePDF(c, h.service.GetSolutionPDF)
}

func (h *QuestionHandler) servePDF(c *gin.Context, get func(ctx context.Context, id uuid.UUID, userID string) (*services.FileDownload, error)) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	file, err := get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Inline so the browser can preview the PDF directly.
	c.Header("Content-Disposition", `inline; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ===== HELPER FUNCTIONS =====

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{}

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

	if tags := c.QueryArray("tags"); len(tags) > 0 {
		filters.Tags = tags
	}

	if sortBy := c.Query("sort_by"); sortBy != "" {
		validSortFields := map[string]bool{
			"created_at": true,
			"updated_at": true,
			"title":      true,
			"difficulty": true,
		}
		if validSortFields[sortBy] {
			filters.SortBy = sortBy
		}
	}

	if sortOrder := c.Query("sort_order"); sortOrder == "asc" || sortOrder == "desc" {
		filters.SortOrder = sortOrder
	}

	return filters
}

// readUploadedFile reads the "file" form field, writing a 400 on failure.
func readUploadedFile(c *gin.Context) (data []byte, filename string, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
		})
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
		})
		return nil, "", false
	}

	return data, fileHeader.Filename, true
}

// serveDownload writes a FileDownload as an attachment response.
func serveDownload(c *gin.Context, file *services.FileDownload) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
