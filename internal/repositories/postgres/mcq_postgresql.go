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

type MCQPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewMCQPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MCQRepository {
	return &MCQPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new MCQ and invalidates cache
func (m *MCQPostgreSQL) Create(ctx context.Context, tx *gorm.DB, mcq *models.MCQ) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(mcq).Error; err != nil {
		return fmt.Errorf("failed to create MCQ: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, m.cacheManager.MCQ, fmt.Sprintf("creator:%s:*", mcq.CreatedBy))
	cache.SafeInvalidatePattern(ctx, m.cacheManager.MCQ, "list:*")

	return nil
}

// GetByID retrieves an MCQ by ID with caching
func (m *MCQPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MCQ, error) {
	db := m.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var mcq models.MCQ

	err := m.cacheManager.MCQ.CacheOrExecute(ctx, cacheKey, &mcq, cache.MCQCacheConfig.TTL, func() (interface{}, error) {
		var dbMCQ models.MCQ
		if err := db.WithContext(ctx).First(&dbMCQ, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("MCQ not found with ID %s", id)
			}
			return nil, fmt.Errorf("failed to get MCQ: %w", err)
		}
		return &dbMCQ, nil
	})

	if err != nil {
		return nil, err
	}

	return &mcq, nil
}

// GetByIDWithDetails retrieves an MCQ with its category
func (m *MCQPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MCQ, error) {
	db := m.getDB(tx)
	var mcq models.MCQ
	if err := db.WithContext(ctx).
		Preload("Category").
		First(&mcq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("MCQ not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get MCQ with details: %w", err)
	}
	return &mcq, nil
}

// Update updates an MCQ
func (m *MCQPostgreSQL) Update(ctx context.Context, tx *gorm.DB, mcq *models.MCQ) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Save(mcq).Error; err != nil {
		return fmt.Errorf("failed to update MCQ: %w", err)
	}

	cache.InvalidateMCQCache(ctx, m.cacheManager, mcq.ID, mcq.CreatedBy)
	return nil
}

// Delete removes an MCQ
func (m *MCQPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := m.getDB(tx)

	var mcq models.MCQ
	if err := db.WithContext(ctx).Select("id, created_by").First(&mcq, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get MCQ before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.MCQ{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete MCQ: %w", err)
	}

	cache.InvalidateMCQCache(ctx, m.cacheManager, id, mcq.CreatedBy)
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves MCQs with filtering and pagination
func (m *MCQPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.MCQFilters) ([]*models.MCQ, int64, error) {
	db := m.getDB(tx)
	query := db.WithContext(ctx).Model(&models.MCQ{})

	query = m.applyMCQFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count MCQs: %w", err)
	}

	query = m.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var mcqs []*models.MCQ
	if err := query.Find(&mcqs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list MCQs: %w", err)
	}

	return mcqs, total, nil
}

// GetByCreator retrieves MCQs created by a specific user
func (m *MCQPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.MCQFilters) ([]*models.MCQ, int64, error) {
	filters.CreatedBy = &creatorID
	return m.List(ctx, tx, filters)
}

// GetByCategory retrieves MCQs by category
func (m *MCQPostgreSQL) GetByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, filters repositories.MCQFilters) ([]*models.MCQ, int64, error) {
	filters.CategoryID = &categoryID
	return m.List(ctx, tx, filters)
}

// Search performs text search on MCQs
func (m *MCQPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.MCQFilters) ([]*models.MCQ, int64, error) {
	db := m.getDB(tx)
	dbQuery := db.WithContext(ctx).Model(&models.MCQ{})

	if query != "" {
		searchTerm := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(question_text) LIKE ?", searchTerm, searchTerm)
	}

	dbQuery = m.applyMCQFilters(dbQuery, filters)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	dbQuery = m.helpers.ApplyPaginationAndSort(dbQuery, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var mcqs []*models.MCQ
	if err := dbQuery.Find(&mcqs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search MCQs: %w", err)
	}

	return mcqs, total, nil
}

// ===== VALIDATION =====

// ExistsByTitle checks if an MCQ with the same title exists for the creator
func (m *MCQPostgreSQL) ExistsByTitle(ctx context.Context, tx *gorm.DB, title string, creatorID string, excludeID *uuid.UUID) (bool, error) {
	db := m.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.MCQ{}).
		Where("title = ? AND created_by = ?", title, creatorID)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check MCQ title existence: %w", err)
	}

	return count > 0, nil
}

// CountByCategory counts MCQs attached to a category
func (m *MCQPostgreSQL) CountByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error) {
	db := m.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.MCQ{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count MCQs by category: %w", err)
	}
	return count, nil
}

// ===== HELPER METHODS =====

func (m *MCQPostgreSQL) applyMCQFilters(query *gorm.DB, filters repositories.MCQFilters) *gorm.DB {
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
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (m *MCQPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}
