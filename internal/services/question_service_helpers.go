package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
)

// ===== PERMISSION CHECKS =====

// CanAccess: teachers and admins see everything; students never reach
// these routes but the check stays defensive.
func (s *questionService) CanAccess(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return userRole == models.RoleTeacher || userRole == models.RoleAdmin, nil
}

func (s *questionService) CanEdit(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	// Admin can edit all questions
	if userRole == models.RoleAdmin {
		return true, nil
	}

	if userRole != models.RoleTeacher {
		return false, nil
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return false, err
	}

	// Imported questions are shared; any teacher may maintain them
	if question.IsImported() {
		return true, nil
	}

	return question.CreatedBy == userID, nil
}

func (s *questionService) CanDelete(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	if userRole == models.RoleAdmin {
		return true, nil
	}

	if userRole != models.RoleTeacher {
		return false, nil
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return false, err
	}

	// Only owners can delete their own questions
	return question.CreatedBy == userID, nil
}

// ===== HELPER FUNCTIONS =====

func (s *questionService) getUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role, nil
}

func (s *questionService) canCreateContent(ctx context.Context, userID string) (bool, error) {
	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return userRole == models.RoleTeacher || userRole == models.RoleAdmin, nil
}

func (s *questionService) buildQuestionResponse(ctx context.Context, question *models.Question) *QuestionResponse {
	resp := newQuestionResponse(question)

	if resp.CreatorName == "" && question.CreatedBy != "" {
		if user, err := s.repo.User().GetByID(ctx, question.CreatedBy); err == nil {
			resp.CreatorName = user.FullName
		}
	}

	return resp
}

func (s *questionService) buildQuestionListResponse(ctx context.Context, questions []*models.Question, total int64, filters repositories.QuestionFilters) *QuestionListResponse {
	responses := make([]*QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = newQuestionResponse(q)
	}

	return &QuestionListResponse{
		Questions: responses,
		Total:     total,
		Page:      (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:      filters.Limit,
	}
}

// newQuestionResponse shapes a question for API output without extra
// lookups; shared with the authoring and import services.
func newQuestionResponse(question *models.Question) *QuestionResponse {
	resp := &QuestionResponse{
		Question:   question,
		Tags:       question.Tags(),
		IsImported: question.IsImported(),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if question.Category != nil {
		resp.CategoryName = question.Category.Name
	}
	return resp
}

// buildQuestionFromCreate maps a create request onto a model, applying
// the solution invariant: no solution means html type and empty fields.
func buildQuestionFromCreate(req *CreateQuestionRequest, creatorID string) *models.Question {
	question := &models.Question{
		CategoryID:       req.CategoryID,
		CreatedBy:        creatorID,
		Title:            req.Title,
		Description:      req.Description,
		ProblemStatement: req.ProblemStatement,
		StatementType:    req.StatementType,
		Difficulty:       req.Difficulty,
		MaxScore:         req.MaxScore,
		TimeLimitSeconds: req.TimeLimitSeconds,
		IsActive:         true,
		HasSolution:      req.HasSolution,
		SolutionType:     req.SolutionType,
		SolutionText:     req.SolutionText,
	}

	if question.StatementType == "" {
		question.StatementType = models.ContentHTML
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if question.MaxScore == 0 {
		question.MaxScore = 100
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}

	if !question.HasSolution {
		question.SolutionType = models.ContentHTML
		question.SolutionText = nil
	} else if question.SolutionType == "" {
		question.SolutionType = models.ContentHTML
	}

	question.ExtraData = encodeExtraData(req.ExtraData, req.Tags)

	return question
}

func applyQuestionUpdate(question *models.Question, req *UpdateQuestionRequest) {
	if req.Title != nil {
		question.Title = *req.Title
	}
	if req.CategoryID != nil {
		question.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		question.Description = req.Description
	}
	if req.ProblemStatement != nil {
		question.ProblemStatement = *req.ProblemStatement
	}
	if req.StatementType != nil {
		question.StatementType = *req.StatementType
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.MaxScore != nil {
		question.MaxScore = *req.MaxScore
	}
	if req.TimeLimitSeconds != nil {
		question.TimeLimitSeconds = *req.TimeLimitSeconds
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}
	if req.HasSolution != nil {
		question.HasSolution = *req.HasSolution
	}
	if req.SolutionType != nil {
		question.SolutionType = *req.SolutionType
	}
	if req.SolutionText != nil {
		question.SolutionText = req.SolutionText
	}

	if !question.HasSolution {
		question.SolutionType = models.ContentHTML
		question.SolutionText = nil
	}

	if req.Tags != nil || req.ExtraData != nil {
		tags := req.Tags
		if tags == nil {
			tags = question.Tags()
		}
		extra := req.ExtraData
		if extra == nil {
			extra = decodeExtraData(question.ExtraData)
		}
		// Preserve the import marker across updates
		if taskID := question.ImportedTaskID(); taskID != "" {
			if extra == nil {
				extra = map[string]interface{}{}
			}
			extra["question_id"] = taskID
		}
		question.ExtraData = encodeExtraData(extra, tags)
	}
}

// encodeExtraData merges free-form extra data with the tags list into the
// jsonb column. Tags always win over an extra_data "tags" key.
func encodeExtraData(extra map[string]interface{}, tags []string) datatypes.JSON {
	merged := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		merged[k] = v
	}
	if tags != nil {
		merged[extraDataTagsKey] = tags
	}
	if len(merged) == 0 {
		return nil
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil
	}
	return raw
}

func decodeExtraData(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

const extraDataTagsKey = "tags"

// validatePDFUpload enforces the .pdf extension and non-empty content.
func validatePDFUpload(data []byte, filename string) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrInvalidFileType
	}
	return nil
}
