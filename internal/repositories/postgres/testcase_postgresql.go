package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestCasePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTestCasePostgreSQL(db *gorm.DB) repositories.QuestionTestCaseRepository {
	return &TestCasePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (t *TestCasePostgreSQL) Create(ctx context.Context, tx *gorm.DB, testCase *models.QuestionTestCase) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(testCase).Error; err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}
	return nil
}

func (t *TestCasePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionTestCase, error) {
	db := t.getDB(tx)
	var testCase models.QuestionTestCase
	if err := db.WithContext(ctx).First(&testCase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test case not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return &testCase, nil
}

func (t *TestCasePostgreSQL) Update(ctx context.Context, tx *gorm.DB, testCase *models.QuestionTestCase) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(testCase).Error; err != nil {
		return fmt.Errorf("failed to update test case: %w", err)
	}
	return nil
}

func (t *TestCasePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.QuestionTestCase{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves test cases with filtering and pagination
func (t *TestCasePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestCaseFilters) ([]*models.QuestionTestCase, int64, error) {
	db := t.getDB(tx)
	query := db.WithContext(ctx).Model(&models.QuestionTestCase{})

	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}
	if filters.IsSample != nil {
		query = query.Where("is_sample = ?", *filters.IsSample)
	}
	if filters.IsHidden != nil {
		query = query.Where("is_hidden = ?", *filters.IsHidden)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count test cases: %w", err)
	}

	query = query.Order("created_at ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var testCases []*models.QuestionTestCase
	if err := query.Find(&testCases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list test cases: %w", err)
	}

	return testCases, total, nil
}

// GetByQuestion retrieves all test cases for a question in insertion order
func (t *TestCasePostgreSQL) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) ([]*models.QuestionTestCase, error) {
	db := t.getDB(tx)
	var testCases []*models.QuestionTestCase
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&testCases).Error; err != nil {
		return nil, fmt.Errorf("failed to get test cases by question: %w", err)
	}
	return testCases, nil
}

// ===== BULK OPERATIONS =====

func (t *TestCasePostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, testCases []*models.QuestionTestCase) error {
	if len(testCases) == 0 {
		return nil
	}

	db := t.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(testCases, 100).Error; err != nil {
		return fmt.Errorf("failed to create test cases batch: %w", err)
	}
	return nil
}

func (t *TestCasePostgreSQL) DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.QuestionTestCase{}).Error; err != nil {
		return fmt.Errorf("failed to delete test cases by question: %w", err)
	}
	return nil
}

// ===== VALIDATION =====

func (t *TestCasePostgreSQL) CountByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (int64, error) {
	db := t.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.QuestionTestCase{}).
		Where("question_id = ?", questionID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count test cases: %w", err)
	}
	return count, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (t *TestCasePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}
