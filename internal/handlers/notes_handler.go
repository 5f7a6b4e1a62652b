package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

// NotesHandler serves the lecture notes portal: student-facing browsing
// and downloads plus teacher-facing note management.
type NotesHandler struct {
	BaseHandler
	service services.NotesService
}

func NewNotesHandler(service services.NotesService, logger utils.Logger) *NotesHandler {
	return &NotesHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// ListNotes lists notes in the student's enrolled courses
func (h *NotesHandler) ListNotes(c *gin.Context) {
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := h.parseNoteListParams(c)

	response, err := h.service.ListNotes(c.Request.Context(), studentID, params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadNoteFile serves one note file
func (h *NotesHandler) DownloadNoteFile(c *gin.Context) {
	fileID, ok := parseUUIDParam(c, "file_id")
	if !ok {
		return
	}

	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	file, err := h.service.GetNoteFile(c.Request.Context(), fileID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveDownload(c, file)
}

type bulkDownloadRequest struct {
	FileIDs []uuid.UUID `json:"file_ids" binding:"required"`
}

// BulkDownloadNotes zips the requested files and serves the archive
func (h *NotesHandler) BulkDownloadNotes(c *gin.Context) {
	var req bulkDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	archive, err := h.service.BulkDownload(c.Request.Context(), req.FileIDs, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveDownload(c, archive)
}

// ===== TEACHER ENDPOINTS =====

// CreateNote creates a note with its files in one multipart request
func (h *NotesHandler) CreateNote(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	req, ok := h.parseNoteForm(c)
	if !ok {
		return
	}

	files, ok := h.readNoteFiles(c)
	if !ok {
		return
	}

	response, err := h.service.CreateNote(c.Request.Context(), req, teacherID, files)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetNote retrieves a note with its file metadata
func (h *NotesHandler) GetNote(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	response, err := h.service.GetNote(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateNote updates note metadata
func (h *NotesHandler) UpdateNote(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	response, err := h.service.UpdateNote(c.Request.Context(), id, &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteNote deletes a note with its files
func (h *NotesHandler) DeleteNote(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), id, teacherID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddNoteFile attaches one file to an existing note
func (h *NotesHandler) AddNoteFile(c *gin.Context) {
	noteID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	data, filename, ok := readUploadedFile(c)
	if !ok {
		return
	}

	upload := services.NoteFileUpload{
		Filename:    filename,
		ContentType: c.GetHeader("Content-Type"),
		Data:        data,
	}

	response, err := h.service.AddNoteFile(c.Request.Context(), noteID, teacherID, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// DeleteNoteFile removes one file from a note
func (h *NotesHandler) DeleteNoteFile(c *gin.Context) {
	fileID, ok := parseUUIDParam(c, "file_id")
	if !ok {
		return
	}

	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNoteFile(c.Request.Context(), fileID, teacherID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadNoteArchive serves all files of one note as a zip
func (h *NotesHandler) DownloadNoteArchive(c *gin.Context) {
	noteID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	archive, err := h.service.DownloadNoteArchive(c.Request.Context(), noteID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveDownload(c, archive)
}

// GetTeacherNotes lists the authenticated teacher's own notes
func (h *NotesHandler) GetTeacherNotes(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := h.parseNoteListParams(c)

	response, err := h.service.GetTeacherNotes(c.Request.Context(), teacherID, params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetNoteStats returns upload and download stats for the teacher's notes
func (h *NotesHandler) GetNoteStats(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.GetNoteStats(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== HELPERS =====

func (h *NotesHandler) parseNoteListParams(c *gin.Context) services.NoteListParams {
	params := services.NoteListParams{
		Search: c.Query("search"),
		Limit:  services.DefaultNotesPageSize,
	}

	if courseID := c.Query("course_id"); courseID != "" {
		if id, err := uuid.Parse(courseID); err == nil {
			params.CourseID = &id
		}
	}

	if category := c.Query("category"); category != "" {
		cat := models.NoteCategory(category)
		params.Category = &cat
	}

	if v := c.Query("skip"); v != "" {
		if skip, err := strconv.Atoi(v); err == nil && skip >= 0 {
			params.Skip = skip
		}
	}

	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			params.Limit = limit
		}
	}

	return params
}

func (h *NotesHandler) parseNoteForm(c *gin.Context) (*services.CreateNoteRequest, bool) {
	req := &services.CreateNoteRequest{
		Title:    c.PostForm("title"),
		Category: models.NoteCategory(c.PostForm("category")),
	}

	if description := c.PostForm("description"); description != "" {
		req.Description = &description
	}

	courseID, err := uuid.Parse(c.PostForm("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid course_id",
		})
		return nil, false
	}
	req.CourseID = courseID

	req.Tags = c.PostFormArray("tags")

	if v := c.PostForm("is_public"); v != "" {
		if isPublic, err := strconv.ParseBool(v); err == nil {
			req.IsPublic = isPublic
		}
	}

	return req, true
}

func (h *NotesHandler) readNoteFiles(c *gin.Context) ([]services.NoteFileUpload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid multipart form",
			Details: err.Error(),
		})
		return nil, false
	}

	var uploads []services.NoteFileUpload
	for _, fileHeader := range form.File["files"] {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Failed to open uploaded file",
				Details: fileHeader.Filename,
			})
			return nil, false
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Failed to read uploaded file",
				Details: fileHeader.Filename,
			})
			return nil, false
		}

		uploads = append(uploads, services.NoteFileUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return uploads, true
}
