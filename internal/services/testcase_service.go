package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

type testCaseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestCaseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) TestCaseService {
	return &testCaseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *testCaseService) Create(ctx context.Context, req *CreateTestCaseRequest, userID string) (*models.QuestionTestCase, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canEdit, err := s.canEditQuestion(ctx, req.QuestionID, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, req.QuestionID.String(), "test_case", "create", "cannot edit parent question")
	}

	testCase := &models.QuestionTestCase{
		QuestionID:     req.QuestionID,
		InputData:      req.InputData,
		ExpectedOutput: req.ExpectedOutput,
		IsSample:       req.IsSample,
		IsHidden:       req.IsHidden,
		Weight:         req.Weight,
		ExtraData:      encodeExtraData(req.ExtraData, nil),
	}
	if testCase.Weight == 0 {
		testCase.Weight = 1
	}

	if err := s.repo.QuestionTestCase().Create(ctx, nil, testCase); err != nil {
		return nil, fmt.Errorf("failed to create test case: %w", err)
	}

	s.logger.Info("Test case created", "test_case_id", testCase.ID, "question_id", req.QuestionID, "user_id", userID)
	return testCase, nil
}

func (s *testCaseService) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.QuestionTestCase, error) {
	testCase, err := s.repo.QuestionTestCase().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestCaseNotFound
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return testCase, nil
}

func (s *testCaseService) Update(ctx context.Context, id uuid.UUID, req *UpdateTestCaseRequest, userID string) (*models.QuestionTestCase, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	testCase, err := s.repo.QuestionTestCase().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestCaseNotFound
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}

	canEdit, err := s.canEditQuestion(ctx, testCase.QuestionID, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id.String(), "test_case", "update", "cannot edit parent question")
	}

	if req.InputData != nil {
		testCase.InputData = *req.InputData
	}
	if req.ExpectedOutput != nil {
		testCase.ExpectedOutput = *req.ExpectedOutput
	}
	if req.IsSample != nil {
		testCase.IsSample = *req.IsSample
	}
	if req.IsHidden != nil {
		testCase.IsHidden = *req.IsHidden
	}
	if req.Weight != nil {
		testCase.Weight = *req.Weight
	}
	if req.ExtraData != nil {
		testCase.ExtraData = encodeExtraData(req.ExtraData, nil)
	}

	if err := s.repo.QuestionTestCase().Update(ctx, nil, testCase); err != nil {
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}

	s.logger.Info("Test case updated", "test_case_id", id, "user_id", userID)
	return testCase, nil
}

func (s *testCaseService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	testCase, err := s.repo.QuestionTestCase().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestCaseNotFound
		}
		return fmt.Errorf("failed to get test case: %w", err)
	}

	canEdit, err := s.canEditQuestion(ctx, testCase.QuestionID, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id.String(), "test_case", "delete", "cannot edit parent question")
	}

	if err := s.repo.QuestionTestCase().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}

	s.logger.Info("Test case deleted", "test_case_id", id, "question_id", testCase.QuestionID, "user_id", userID)
	return nil
}

// List is the generic fallback path where callers filter by question_id
// through query parameters rather than the nested route.
func (s *testCaseService) List(ctx context.Context, filters repositories.TestCaseFilters, userID string) (*TestCaseListResponse, error) {
	testCases, total, err := s.repo.QuestionTestCase().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}

	return &TestCaseListResponse{
		TestCases: testCases,
		Total:     total,
		Page:      (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:      filters.Limit,
	}, nil
}

func (s *testCaseService) GetByQuestion(ctx context.Context, questionID uuid.UUID, userID string) ([]*models.QuestionTestCase, error) {
	if _, err := s.repo.Question().GetByID(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	testCases, err := s.repo.QuestionTestCase().GetByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	return testCases, nil
}

func (s *testCaseService) DeleteByQuestion(ctx context.Context, questionID uuid.UUID, userID string) error {
	canEdit, err := s.canEditQuestion(ctx, questionID, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, questionID.String(), "test_case", "delete", "cannot edit parent question")
	}

	if err := s.repo.QuestionTestCase().DeleteByQuestion(ctx, nil, questionID); err != nil {
		return fmt.Errorf("failed to delete test cases: %w", err)
	}

	s.logger.Info("Test cases deleted for question", "question_id", questionID, "user_id", userID)
	return nil
}

func (s *testCaseService) canEditQuestion(ctx context.Context, questionID uuid.UUID, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return true, nil
	}
	if user.Role != models.RoleTeacher {
		return false, nil
	}

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrQuestionNotFound
		}
		return false, err
	}
	return question.IsImported() || question.CreatedBy == userID, nil
}
