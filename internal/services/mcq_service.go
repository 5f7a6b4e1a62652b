package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

type mcqService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMCQService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) MCQService {
	return &mcqService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *mcqService) Create(ctx context.Context, req *CreateMCQRequest, creatorID string) (*MCQResponse, error) {
	if validationErrors := s.validator.GetBusinessValidator().ValidateMCQCreate(req); len(validationErrors) > 0 {
		return nil, validationErrors
	}

	canCreate, err := s.canManageMCQs(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !canCreate {
		return nil, NewPermissionError(creatorID, "", "mcq", "create", "insufficient role permissions")
	}

	if _, err := s.repo.QuestionCategory().GetByID(ctx, nil, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	exists, err := s.repo.MCQ().ExistsByTitle(ctx, nil, req.Title, creatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	mcq := &models.MCQ{
		CategoryID:     req.CategoryID,
		CreatedBy:      creatorID,
		Title:          req.Title,
		Description:    req.Description,
		QuestionText:   req.QuestionText,
		Difficulty:     req.Difficulty,
		Options:        options,
		CorrectAnswer:  req.CorrectAnswer,
		ShuffleOptions: req.ShuffleOptions,
		Explanation:    req.Explanation,
		MaxScore:       req.MaxScore,
		PartialScoring: req.PartialScoring,
		IsActive:       true,
		ExtraData:      encodeExtraData(req.ExtraData, nil),
	}
	if mcq.Difficulty == "" {
		mcq.Difficulty = models.DifficultyMedium
	}
	if req.IsActive != nil {
		mcq.IsActive = *req.IsActive
	}

	if err := s.repo.MCQ().Create(ctx, nil, mcq); err != nil {
		return nil, fmt.Errorf("failed to create mcq: %w", err)
	}

	s.logger.Info("MCQ created", "mcq_id", mcq.ID, "creator_id", creatorID, "title", mcq.Title)

	return s.buildMCQResponse(mcq), nil
}

func (s *mcqService) GetByID(ctx context.Context, id uuid.UUID, userID string) (*MCQResponse, error) {
	mcq, err := s.repo.MCQ().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMCQNotFound
		}
		return nil, fmt.Errorf("failed to get mcq: %w", err)
	}
	return s.buildMCQResponse(mcq), nil
}

func (s *mcqService) Update(ctx context.Context, id uuid.UUID, req *UpdateMCQRequest, userID string) (*MCQResponse, error) {
	mcq, err := s.repo.MCQ().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMCQNotFound
		}
		return nil, fmt.Errorf("failed to get mcq: %w", err)
	}

	if validationErrors := s.validator.GetBusinessValidator().ValidateMCQUpdate(req, mcq); len(validationErrors) > 0 {
		return nil, validationErrors
	}

	canEdit, err := s.canEditMCQ(ctx, mcq, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id.String(), "mcq", "update", "not owner or insufficient role")
	}

	if req.CategoryID != nil && *req.CategoryID != mcq.CategoryID {
		if _, err := s.repo.QuestionCategory().GetByID(ctx, nil, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		mcq.CategoryID = *req.CategoryID
	}

	if req.Title != nil && *req.Title != mcq.Title {
		exists, err := s.repo.MCQ().ExistsByTitle(ctx, nil, *req.Title, mcq.CreatedBy, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrDuplicateTitle
		}
		mcq.Title = *req.Title
	}

	if req.Description != nil {
		mcq.Description = req.Description
	}
	if req.QuestionText != nil {
		mcq.QuestionText = *req.QuestionText
	}
	if req.Difficulty != nil {
		mcq.Difficulty = *req.Difficulty
	}
	if req.Options != nil {
		options, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		mcq.Options = options
	}
	if req.CorrectAnswer != nil {
		mcq.CorrectAnswer = *req.CorrectAnswer
	}
	if req.ShuffleOptions != nil {
		mcq.ShuffleOptions = *req.ShuffleOptions
	}
	if req.Explanation != nil {
		mcq.Explanation = req.Explanation
	}
	if req.MaxScore != nil {
		mcq.MaxScore = *req.MaxScore
	}
	if req.PartialScoring != nil {
		mcq.PartialScoring = *req.PartialScoring
	}
	if req.IsActive != nil {
		mcq.IsActive = *req.IsActive
	}
	if req.ExtraData != nil {
		mcq.ExtraData = encodeExtraData(req.ExtraData, nil)
	}

	if err := s.repo.MCQ().Update(ctx, nil, mcq); err != nil {
		return nil, fmt.Errorf("failed to update mcq: %w", err)
	}

	s.logger.Info("MCQ updated", "mcq_id", id, "user_id", userID)

	return s.buildMCQResponse(mcq), nil
}

func (s *mcqService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	mcq, err := s.repo.MCQ().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMCQNotFound
		}
		return fmt.Errorf("failed to get mcq: %w", err)
	}

	canEdit, err := s.canEditMCQ(ctx, mcq, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id.String(), "mcq", "delete", "not owner or insufficient role")
	}

	if err := s.repo.MCQ().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete mcq: %w", err)
	}

	s.logger.Info("MCQ deleted", "mcq_id", id, "user_id", userID)
	return nil
}

func (s *mcqService) List(ctx context.Context, filters repositories.MCQFilters, userID string) (*MCQListResponse, error) {
	mcqs, total, err := s.repo.MCQ().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list mcqs: %w", err)
	}
	return s.buildMCQListResponse(mcqs, total, filters), nil
}

func (s *mcqService) Search(ctx context.Context, query string, filters repositories.MCQFilters, userID string) (*MCQListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, filters, userID)
	}

	mcqs, total, err := s.repo.MCQ().Search(ctx, nil, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search mcqs: %w", err)
	}
	return s.buildMCQListResponse(mcqs, total, filters), nil
}

// ===== HELPER FUNCTIONS =====

func (s *mcqService) canManageMCQs(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role == models.RoleTeacher || user.Role == models.RoleAdmin, nil
}

func (s *mcqService) canEditMCQ(ctx context.Context, mcq *models.MCQ, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return true, nil
	}
	return user.Role == models.RoleTeacher && mcq.CreatedBy == userID, nil
}

func (s *mcqService) buildMCQResponse(mcq *models.MCQ) *MCQResponse {
	resp := &MCQResponse{MCQ: mcq}

	var options []string
	if len(mcq.Options) > 0 {
		_ = json.Unmarshal(mcq.Options, &options)
	}
	if options == nil {
		options = []string{}
	}
	resp.Options = options

	if mcq.Category != nil {
		resp.CategoryName = mcq.Category.Name
	}
	return resp
}

func (s *mcqService) buildMCQListResponse(mcqs []*models.MCQ, total int64, filters repositories.MCQFilters) *MCQListResponse {
	responses := make([]*MCQResponse, len(mcqs))
	for i, m := range mcqs {
		responses[i] = s.buildMCQResponse(m)
	}

	return &MCQListResponse{
		MCQs:  responses,
		Total: total,
		Page:  (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:  filters.Limit,
	}
}
