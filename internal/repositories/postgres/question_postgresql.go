package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates cache
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, fmt.Sprintf("creator:%s:*", question.CreatedBy))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")

	return nil
}

// GetByID retrieves a question by ID with caching. The PDF blobs are not
// selected; use GetStatementPDF / GetSolutionPDF for those.
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).
			Omit("pdf_statement", "solution_pdf").
			First(&dbQuestion, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("question not found with ID %s", id)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

// GetByIDWithDetails retrieves a question with all related data
func (q *QuestionPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Omit("pdf_statement", "solution_pdf").
		Preload("Category").
		Preload("TestCases", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get question with details: %w", err)
	}
	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).
		Omit("pdf_statement", "solution_pdf").
		Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.CreatedBy)

	return nil
}

// Delete removes a question together with its test cases
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := q.getDB(tx)

	// Get question info before deleting for cache invalidation
	var question models.Question
	if err := db.WithContext(ctx).Select("id, created_by").First(&question, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get question before delete: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// test cases first due to foreign key constraint
		if err := tx.WithContext(ctx).Where("question_id = ?", id).Delete(&models.QuestionTestCase{}).Error; err != nil {
			return fmt.Errorf("failed to delete question test cases: %w", err)
		}

		if err := tx.WithContext(ctx).Delete(&models.Question{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete question: %w", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.CreatedBy)

	return nil
}

// ===== BULK OPERATIONS =====

// CreateBatch creates multiple questions in a batch
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")
	return nil
}

// GetByIDs retrieves multiple questions by their IDs
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Omit("pdf_statement", "solution_pdf").
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}

	return questions, nil
}

// ===== QUERY OPERATIONS =====

// List retrieves questions with filtering and pagination. Hand-authored
// questions come first, imported questions at the tail, newest first
// within each group.
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Question{})

	// Apply filters
	query = q.applyQuestionFilters(query, filters)

	// Count total records
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = q.applyListOrdering(query, filters)

	var questions []*models.Question
	if err := query.Omit("pdf_statement", "solution_pdf").Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetByCreator retrieves questions created by a specific user
func (q *QuestionPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.CreatedBy = &creatorID
	return q.List(ctx, tx, filters)
}

// GetByCategory retrieves questions by category
func (q *QuestionPostgreSQL) GetByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.CategoryID = &categoryID
	return q.List(ctx, tx, filters)
}

// GetByTags retrieves questions carrying all of the given tags
func (q *QuestionPostgreSQL) GetByTags(ctx context.Context, tx *gorm.DB, tags []string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.Tags = tags
	return q.List(ctx, tx, filters)
}

// Search performs text search on questions
func (q *QuestionPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	dbQuery := db.WithContext(ctx).Model(&models.Question{})

	// Apply text search
	if query != "" {
		searchTerm := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(problem_statement) LIKE ? OR LOWER(extra_data ->> 'tags') LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm)
	}

	// Apply additional filters
	dbQuery = q.applyQuestionFilters(dbQuery, filters)

	// Count total records
	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	dbQuery = q.applyListOrdering(dbQuery, filters)

	var questions []*models.Question
	if err := dbQuery.Omit("pdf_statement", "solution_pdf").Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search questions: %w", err)
	}

	return questions, total, nil
}

// ===== IMPORT SUPPORT =====

// GetByImportedTaskID finds the question imported for an upstream task ID
func (q *QuestionPostgreSQL) GetByImportedTaskID(ctx context.Context, tx *gorm.DB, taskID string) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Omit("pdf_statement", "solution_pdf").
		Where("extra_data ->> 'question_id' = ?", taskID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get question by imported task ID: %w", err)
	}
	return &question, nil
}

// ===== PDF BLOB ACCESS =====

// GetStatementPDF loads the statement PDF blob and its filename
func (q *QuestionPostgreSQL) GetStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Select("id, pdf_statement, pdf_filename").
		First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("question not found with ID %s", id)
		}
		return nil, "", fmt.Errorf("failed to get statement PDF: %w", err)
	}

	filename := ""
	if question.PDFFilename != nil {
		filename = *question.PDFFilename
	}
	return question.PDFStatement, filename, nil
}

// GetSolutionPDF loads the solution PDF blob and its filename
func (q *QuestionPostgreSQL) GetSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Select("id, solution_pdf, solution_pdf_filename").
		First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("question not found with ID %s", id)
		}
		return nil, "", fmt.Errorf("failed to get solution PDF: %w", err)
	}

	filename := ""
	if question.SolutionPDFFilename != nil {
		filename = *question.SolutionPDFFilename
	}
	return question.SolutionPDF, filename, nil
}

// UpdateStatementPDF replaces the statement PDF blob and its metadata
func (q *QuestionPostgreSQL) UpdateStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error {
	db := q.getDB(tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, created_by").First(&question, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get question before PDF update: %w", err)
	}

	size := len(data)
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pdf_statement": data,
			"pdf_filename":  filename,
			"pdf_filesize":  size,
		}).Error; err != nil {
		return fmt.Errorf("failed to update statement PDF: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.CreatedBy)
	return nil
}

// UpdateSolutionPDF replaces the solution PDF blob and its metadata
func (q *QuestionPostgreSQL) UpdateSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error {
	db := q.getDB(tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, created_by").First(&question, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get question before PDF update: %w", err)
	}

	size := len(data)
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"solution_pdf":          data,
			"solution_pdf_filename": filename,
			"solution_pdf_filesize": size,
		}).Error; err != nil {
		return fmt.Errorf("failed to update solution PDF: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.CreatedBy)
	return nil
}

// ===== VALIDATION AND CHECKS =====

// ExistsByTitle checks if a question with the same title exists for the creator
func (q *QuestionPostgreSQL) ExistsByTitle(ctx context.Context, tx *gorm.DB, title string, creatorID string, excludeID *uuid.UUID) (bool, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("title = ? AND created_by = ?", title, creatorID)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check question title existence: %w", err)
	}

	return count > 0, nil
}

// CountByCategory counts questions attached to a category
func (q *QuestionPostgreSQL) CountByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions by category: %w", err)
	}
	return count, nil
}

// ===== STATISTICS =====

// GetUsageStats retrieves usage statistics for a creator
func (q *QuestionPostgreSQL) GetUsageStats(ctx context.Context, tx *gorm.DB, creatorID string) (*repositories.QuestionUsageStats, error) {
	db := q.getDB(tx)
	stats := &repositories.QuestionUsageStats{
		QuestionsByDiff: make(map[models.DifficultyLevel]int),
	}

	var totalCount int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("created_by = ?", creatorID).
		Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count total questions: %w", err)
	}
	stats.TotalQuestions = int(totalCount)

	var activeCount int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("created_by = ? AND is_active = ?", creatorID, true).
		Count(&activeCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count active questions: %w", err)
	}
	stats.ActiveQuestions = int(activeCount)

	var importedCount int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("created_by = ? AND extra_data ->> 'question_id' IS NOT NULL", creatorID).
		Count(&importedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count imported questions: %w", err)
	}
	stats.ImportedCount = int(importedCount)

	var diffResults []struct {
		Difficulty models.DifficultyLevel
		Count      int
	}
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("difficulty, COUNT(*) as count").
		Where("created_by = ?", creatorID).
		Group("difficulty").
		Find(&diffResults).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by difficulty: %w", err)
	}
	for _, result := range diffResults {
		stats.QuestionsByDiff[result.Difficulty] = result.Count
	}

	return stats, nil
}

// ===== HELPER METHODS =====

// applyQuestionFilters applies common question filters to a query
func (q *QuestionPostgreSQL) applyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if len(filters.Tags) > 0 {
		for _, tag := range filters.Tags {
			query = query.Where("extra_data ->> 'tags' LIKE ?", "%\""+tag+"\"%")
		}
	}

	return query
}

// applyListOrdering keeps imported questions at the tail of listings unless
// the caller requested an explicit sort column.
func (q *QuestionPostgreSQL) applyListOrdering(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.SortBy != "" {
		return q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	}

	query = query.Order("(extra_data ->> 'question_id') IS NOT NULL ASC").Order("created_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
