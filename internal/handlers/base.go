package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
	"github.com/codebench-edu/console-service/internal/validator"
)

// ErrorResponse is the uniform error payload returned by all handlers.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	logger := utils.LoggerFromContext(c.Request.Context(), h.logger)
	logger.Error(msg, "error", err, "path", c.Request.URL.Path, "method", c.Request.Method)
}

// handleServiceError maps service errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrTestCaseNotFound),
		errors.Is(err, services.ErrMCQNotFound),
		errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrNoteFileNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateTitle),
		errors.Is(err, services.ErrDuplicateCategory),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrSessionSubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrStepNotReady),
		errors.Is(err, services.ErrInvalidFileType),
		errors.Is(err, services.ErrEmptyFile),
		errors.Is(err, services.ErrNoFilesRequested),
		errors.Is(err, services.ErrUnknownEditorRole),
		errors.Is(err, services.ErrUnknownTemplateKind):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: err.Error(),
		})
	case services.IsUploadError(err):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "File upload failed",
			Details: err.Error(),
		})
	case validator.IsValidationError(err):
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// ===== SHARED REQUEST HELPERS =====

// parseUUIDParam parses a path parameter as a UUID, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

// requireUserID pulls the authenticated user ID set by the auth middleware.
func requireUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

// parsePagination reads page/size query params into limit and offset.
func parsePagination(c *gin.Context, defaultSize, maxSize int) (limit, offset int) {
	page := 1
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}

	limit = defaultSize
	if v := c.Query("size"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			limit = s
		}
	}
	if limit > maxSize {
		limit = maxSize
	}

	return limit, (page - 1) * limit
}

func parseBoolQuery(c *gin.Context, name string) *bool {
	if v := c.Query(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}
