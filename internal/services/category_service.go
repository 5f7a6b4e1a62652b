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

type categoryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCategoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CategoryService {
	return &categoryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest, userID string) (*CategoryResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canManage, err := s.canManageCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(userID, "", "category", "create", "insufficient role permissions")
	}

	exists, err := s.repo.QuestionCategory().ExistsByName(ctx, nil, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCategory
	}

	category := &models.QuestionCategory{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		ExtraData:   encodeExtraData(req.ExtraData, nil),
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.QuestionCategory().Create(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "name", category.Name, "user_id", userID)

	return &CategoryResponse{QuestionCategory: category}, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.repo.QuestionCategory().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	stats, err := s.repo.QuestionCategory().GetCategoryStats(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}

	return &CategoryResponse{
		QuestionCategory: category,
		QuestionCount:    stats.QuestionCount,
		MCQCount:         stats.MCQCount,
	}, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest, userID string) (*CategoryResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canManage, err := s.canManageCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(userID, id.String(), "category", "update", "insufficient role permissions")
	}

	category, err := s.repo.QuestionCategory().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil && *req.Name != category.Name {
		exists, err := s.repo.QuestionCategory().ExistsByName(ctx, nil, *req.Name, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			return nil, ErrDuplicateCategory
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ExtraData != nil {
		category.ExtraData = encodeExtraData(req.ExtraData, nil)
	}

	if err := s.repo.QuestionCategory().Update(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated", "category_id", id, "user_id", userID)

	return &CategoryResponse{QuestionCategory: category}, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	canManage, err := s.canManageCategories(ctx, userID)
	if err != nil {
		return err
	}
	if !canManage {
		return NewPermissionError(userID, id.String(), "category", "delete", "insufficient role permissions")
	}

	hasQuestions, err := s.repo.QuestionCategory().HasQuestions(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if hasQuestions {
		return ErrCategoryInUse
	}

	if err := s.repo.QuestionCategory().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted", "category_id", id, "user_id", userID)
	return nil
}

func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]*CategoryResponse, error) {
	withCounts, err := s.repo.QuestionCategory().GetCategoriesWithCounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	responses := make([]*CategoryResponse, 0, len(withCounts))
	for _, c := range withCounts {
		if activeOnly && !c.IsActive {
			continue
		}
		responses = append(responses, &CategoryResponse{
			QuestionCategory: c.QuestionCategory,
			QuestionCount:    c.QuestionCount,
			MCQCount:         c.MCQCount,
		})
	}
	return responses, nil
}

func (s *categoryService) canManageCategories(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role == models.RoleTeacher || user.Role == models.RoleAdmin, nil
}
