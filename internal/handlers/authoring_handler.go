package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

// AuthoringHandler exposes the multi-step question authoring wizard.
type AuthoringHandler struct {
	BaseHandler
	service  services.AuthoringService
	template services.TemplateService
}

func NewAuthoringHandler(service services.AuthoringService, template services.TemplateService, logger utils.Logger) *AuthoringHandler {
	return &AuthoringHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		template:    template,
	}
}

// ===== SESSION LIFECYCLE =====

// StartSession creates a fresh authoring session
func (h *AuthoringHandler) StartSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	session, err := h.service.StartSession(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// StartSessionForQuestion creates a session pre-filled from an existing question
func (h *AuthoringHandler) StartSessionForQuestion(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	session, err := h.service.StartSessionForQuestion(c.Request.Context(), questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the current state of an authoring session
func (h *AuthoringHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// CancelSession discards an authoring session
func (h *AuthoringHandler) CancelSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), c.Param("session_id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== STEP CONTENT =====

// UpdateBasicInfo saves the basic-info step of the wizard
func (h *AuthoringHandler) UpdateBasicInfo(c *gin.Context) {
	var info services.WizardBasicInfo
	if err := c.ShouldBindJSON(&info); err != nil {
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

	session, err := h.service.UpdateBasicInfo(c.Request.Context(), c.Param("session_id"), userID, info)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type htmlContentRequest struct {
	HTML string `json:"html" binding:"required"`
}

// SetStatementHTML saves the statement editor content
func (h *AuthoringHandler) SetStatementHTML(c *gin.Context) {
	h.setHTML(c, h.service.SetStatementHTML)
}

// SetSolutionHTML saves the solution editor content
func (h *AuthoringHandler) SetSolutionHTML(c *gin.Context) {
	h.setHTML(c, h.service.SetSolutionHTML)
}

// AttachStatementPDF stages a statement PDF in the session
func (h *AuthoringHandler) AttachStatementPDF(c *gin.Context) {
	h.attachPDF(c, h.service.AttachStatementPDF)
}

// AttachSolutionPDF stages a solution PDF in the session
func (h *AuthoringHandler) AttachSolutionPDF(c *gin.Context) {
	h.attachPDF(c, h.service.AttachSolutionPDF)
}

// ===== NAVIGATION =====

// Advance moves the wizard forward one step
func (h *AuthoringHandler) Advance(c *gin.Context) {
	h.navigate(c, h.service.Advance)
}

// Back moves the wizard back one step
func (h *AuthoringHandler) Back(c *gin.Context) {
	h.navigate(c, h.service.Back)
}

// Submit persists the authored question
func (h *AuthoringHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	response, err := h.service.Submit(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ===== EDITOR TEMPLATES =====

// GetTemplate returns an editor template for a role and kind
func (h *AuthoringHandler) GetTemplate(c *gin.Context) {
	role := services.EditorRole(c.Param("role"))
	kind := services.TemplateKind(c.DefaultQuery("kind", string(services.TemplateBasic)))

	html, err := h.template.GetTemplate(role, kind)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role": role,
		"kind": kind,
		"html": html,
	})
}

// ListTemplates lists the available editor templates
func (h *AuthoringHandler) ListTemplates(c *gin.Context) {
	templates := h.template.ListTemplates()
	c.JSON(http.StatusOK, gin.H{"templates": templates, "total": len(templates)})
}

// ===== HELPERS =====

type sessionContentFn func(ctx context.Context, sessionID string, userID string, content string) (*services.WizardSession, error)

func (h *AuthoringHandler) setHTML(c *gin.Context, set sessionContentFn) {
	var req htmlContentRequest
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

	session, err := set(c.Request.Context(), c.Param("session_id"), userID, req.HTML)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AuthoringHandler) attachPDF(c *gin.Context, attach func(ctx context.Context, sessionID string, userID string, data []byte, filename string) (*services.WizardSession, error)) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	data, filename, ok := readUploadedFile(c)
	if !ok {
		return
	}

	session, err := attach(c.Request.Context(), c.Param("session_id"), userID, data, filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AuthoringHandler) navigate(c *gin.Context, move func(ctx context.Context, sessionID string, userID string) (*services.WizardSession, error)) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	session, err := move(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
