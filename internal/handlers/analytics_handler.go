package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

// AnalyticsHandler exposes submission analytics for activities.
type AnalyticsHandler struct {
	BaseHandler
	service services.AnalyticsService
}

func NewAnalyticsHandler(service services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetActivityOverview returns aggregate stats for one activity
func (h *AnalyticsHandler) GetActivityOverview(c *gin.Context) {
	activityID, ok := parseUUIDParam(c, "activity_id")
	if !ok {
		return
	}

	overview, err := h.service.GetActivityOverview(c.Request.Context(), activityID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetClassPerformance returns per-student performance for an activity in a class
func (h *AnalyticsHandler) GetClassPerformance(c *gin.Context) {
	activityID, ok := parseUUIDParam(c, "activity_id")
	if !ok {
		return
	}

	classID, ok := parseUUIDParam(c, "class_id")
	if !ok {
		return
	}

	performance, err := h.service.GetClassPerformance(c.Request.Context(), activityID, classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

// GetStudentSubmission returns one student's submission detail
func (h *AnalyticsHandler) GetStudentSubmission(c *gin.Context) {
	activityID, ok := parseUUIDParam(c, "activity_id")
	if !ok {
		return
	}

	studentID := c.Param("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid student_id",
		})
		return
	}

	detail, err := h.service.GetStudentSubmission(c.Request.Context(), activityID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetActivityReport returns the full three-part report as JSON
func (h *AnalyticsHandler) GetActivityReport(c *gin.Context) {
	activityID, ok := parseUUIDParam(c, "activity_id")
	if !ok {
		return
	}

	report, err := h.service.BuildActivityReport(c.Request.Context(), activityID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportActivityReport serves the report as an xlsx workbook
func (h *AnalyticsHandler) ExportActivityReport(c *gin.Context) {
	activityID, ok := parseUUIDParam(c, "activity_id")
	if !ok {
		return
	}

	file, err := h.service.ExportActivityReport(c.Request.Context(), activityID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveDownload(c, file)
}

// GetDashboardStats returns platform-wide dashboard numbers
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.service.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
