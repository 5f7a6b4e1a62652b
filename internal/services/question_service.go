package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error) {
	// Validate request
	if validationErrors := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(validationErrors) > 0 {
		return nil, validationErrors
	}

	// Check permissions
	canCreate, err := s.canCreateContent(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check create permissions: %w", err)
	}
	if !canCreate {
		return nil, NewPermissionError(creatorID, "", "question", "create", "insufficient role permissions")
	}

	// Check category exists
	if _, err := s.repo.QuestionCategory().GetByID(ctx, nil, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	// Check for duplicate title within the creator's questions
	exists, err := s.repo.Question().ExistsByTitle(ctx, nil, req.Title, creatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	question := buildQuestionFromCreate(req, creatorID)

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"creator_id", creatorID,
		"title", question.Title)

	if s.events != nil {
		_ = s.events.NotifyQuestionCreated(ctx, question)
	}

	return s.buildQuestionResponse(ctx, question), nil
}

func (s *questionService) GetByID(ctx context.Context, id uuid.UUID, userID string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id.String(), "question", "read", "not accessible to this user")
	}

	return s.buildQuestionResponse(ctx, question), nil
}

func (s *questionService) GetByIDWithDetails(ctx context.Context, id uuid.UUID, userID string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question details: %w", err)
	}

	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id.String(), "question", "read", "not accessible to this user")
	}

	return s.buildQuestionResponse(ctx, question), nil
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id.String(), "question", "update", "not owner or insufficient role")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.CategoryID != nil && *req.CategoryID != question.CategoryID {
		if _, err := s.repo.QuestionCategory().GetByID(ctx, nil, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
	}

	if req.Title != nil && *req.Title != question.Title {
		exists, err := s.repo.Question().ExistsByTitle(ctx, nil, *req.Title, question.CreatedBy, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrDuplicateTitle
		}
	}

	applyQuestionUpdate(question, req)

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", id, "user_id", userID)

	if s.events != nil {
		_ = s.events.NotifyQuestionUpdated(ctx, question)
	}

	return s.buildQuestionResponse(ctx, question), nil
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	canDelete, err := s.CanDelete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canDelete {
		return NewPermissionError(userID, id.String(), "question", "delete", "not owner or insufficient role")
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id, "user_id", userID)

	if s.events != nil {
		_ = s.events.NotifyQuestionDeleted(ctx, id, userID)
	}

	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return s.buildQuestionListResponse(ctx, questions, total, filters), nil
}

func (s *questionService) Search(ctx context.Context, query string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, filters, userID)
	}

	questions, total, err := s.repo.Question().Search(ctx, nil, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	return s.buildQuestionListResponse(ctx, questions, total, filters), nil
}

func (s *questionService) GetByCreator(ctx context.Context, creatorID string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	// Only the creator themselves or an admin may scope by creator
	if creatorID != userID {
		userRole, err := s.getUserRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		if userRole != models.RoleAdmin {
			return nil, NewPermissionError(userID, creatorID, "question", "list", "cannot list another creator's questions")
		}
	}

	questions, total, err := s.repo.Question().GetByCreator(ctx, nil, creatorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by creator: %w", err)
	}
	return s.buildQuestionListResponse(ctx, questions, total, filters), nil
}

// ===== PDF OPERATIONS =====

func (s *questionService) UploadStatementPDF(ctx context.Context, id uuid.UUID, data []byte, filename string, userID string) error {
	if err := validatePDFUpload(data, filename); err != nil {
		return err
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id.String(), "question", "upload-pdf", "not owner or insufficient role")
	}

	if err := s.repo.Question().UpdateStatementPDF(ctx, nil, id, data, filename); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to store statement PDF: %w", err)
	}

	s.logger.Info("Statement PDF uploaded", "question_id", id, "filename", filename, "size", len(data))
	return nil
}

func (s *questionService) UploadSolutionPDF(ctx context.Context, id uuid.UUID, data []byte, filename string, userID string) error {
	if err := validatePDFUpload(data, filename); err != nil {
		return err
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id.String(), "question", "upload-solution-pdf", "not owner or insufficient role")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	// Uploading a solution PDF implies the question has a PDF solution
	if !question.HasSolution || question.SolutionType != models.ContentPDF {
		question.HasSolution = true
		question.SolutionType = models.ContentPDF
		question.SolutionText = nil
		if err := s.repo.Question().Update(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to update question solution type: %w", err)
		}
	}

	if err := s.repo.Question().UpdateSolutionPDF(ctx, nil, id, data, filename); err != nil {
		return fmt.Errorf("failed to store solution PDF: %w", err)
	}

	s.logger.Info("Solution PDF uploaded", "question_id", id, "filename", filename, "size", len(data))
	return nil
}

func (s *questionService) GetStatementPDF(ctx context.Context, id uuid.UUID, userID string) (*FileDownload, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id.String(), "question", "read", "not accessible to this user")
	}

	data, filename, err := s.repo.Question().GetStatementPDF(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get statement PDF: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrQuestionNotFound
	}

	return &FileDownload{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

func (s *questionService) GetSolutionPDF(ctx context.Context, id uuid.UUID, userID string) (*FileDownload, error) {
	canAccess, err := s.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id.String(), "question", "read", "not accessible to this user")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	// Solution blob is only served when a PDF solution actually exists
	if !question.HasSolution || question.SolutionType != models.ContentPDF {
		return nil, ErrQuestionNotFound
	}

	data, filename, err := s.repo.Question().GetSolutionPDF(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get solution PDF: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrQuestionNotFound
	}

	return &FileDownload{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

// ===== STATISTICS =====

func (s *questionService) GetUsageStats(ctx context.Context, creatorID string, userID string) (*repositories.QuestionUsageStats, error) {
	if creatorID != userID {
		userRole, err := s.getUserRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		if userRole != models.RoleAdmin {
			return nil, NewPermissionError(userID, creatorID, "question", "stats", "cannot view another creator's stats")
		}
	}

	stats, err := s.repo.Question().GetUsageStats(ctx, nil, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}
	return stats, nil
}
