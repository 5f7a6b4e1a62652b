package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListCourses lists courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Search: c.Query("search"),
	}
	filters.Limit, filters.Offset = parsePagination(c, 20, 100)

	if active := parseBoolQuery(c, "active_only"); active != nil {
		filters.ActiveOnly = *active
	}

	courses, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": total})
}

// GetCourse retrieves a course by ID
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetMyCourses lists the authenticated student's enrolled courses
func (h *CourseHandler) GetMyCourses(c *gin.Context) {
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	courses, err := h.service.GetEnrolledCourses(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": len(courses)})
}

type enrollmentRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// EnrollStudent adds a student to a course
func (h *CourseHandler) EnrollStudent(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req enrollmentRequest
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

	if err := h.service.Enroll(c.Request.Context(), courseID, req.StudentID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "enrolled"})
}

// UnenrollStudent removes a student from a course
func (h *CourseHandler) UnenrollStudent(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
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

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), courseID, studentID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
