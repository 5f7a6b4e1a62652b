package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

// ImportHandler exposes the admin-only JSONL question importer.
type ImportHandler struct {
	BaseHandler
	service services.ImportService
}

func NewImportHandler(service services.ImportService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ImportJSONL imports questions from server-side JSONL files
func (h *ImportHandler) ImportJSONL(c *gin.Context) {
	var req services.ImportJSONLRequest
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

	result, err := h.service.ImportJSONL(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == "failed" {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, result)
}
