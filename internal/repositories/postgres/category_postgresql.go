package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CategoryPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionCategoryRepository {
	return &CategoryPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new category and invalidates listings
func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.QuestionCategory) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Category, "list:*")
	return nil
}

// GetByID retrieves a category by ID with caching
func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionCategory, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var category models.QuestionCategory

	err := c.cacheManager.Category.CacheOrExecute(ctx, cacheKey, &category, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		var dbCategory models.QuestionCategory
		if err := db.WithContext(ctx).First(&dbCategory, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("category not found with ID %s", id)
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		return &dbCategory, nil
	})

	if err != nil {
		return nil, err
	}

	return &category, nil
}

// GetByName retrieves a category by its unique name
func (c *CategoryPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.QuestionCategory, error) {
	db := c.getDB(tx)
	var category models.QuestionCategory
	if err := db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

// Update updates a category
func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.QuestionCategory) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, category.ID)
	return nil
}

// Delete removes a category. Callers must verify it carries no questions.
func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.QuestionCategory{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, id)
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves categories ordered by name
func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.QuestionCategory, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.QuestionCategory{})

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var categories []*models.QuestionCategory
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// ===== VALIDATION =====

// ExistsByName checks if a category with the given name exists
func (c *CategoryPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uuid.UUID) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.QuestionCategory{}).
		Where("name = ?", name)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name existence: %w", err)
	}

	return count > 0, nil
}

// HasQuestions checks if any question or MCQ references the category
func (c *CategoryPostgreSQL) HasQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	db := c.getDB(tx)

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count questions in category: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	if err := db.WithContext(ctx).
		Model(&models.MCQ{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count MCQs in category: %w", err)
	}

	return count > 0, nil
}

// ===== STATISTICS =====

// GetCategoryStats retrieves per-category counts
func (c *CategoryPostgreSQL) GetCategoryStats(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*repositories.CategoryStats, error) {
	db := c.getDB(tx)
	stats := &repositories.CategoryStats{}

	var questionCount int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", categoryID).
		Count(&questionCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions for category stats: %w", err)
	}
	stats.QuestionCount = int(questionCount)

	var mcqCount int64
	if err := db.WithContext(ctx).
		Model(&models.MCQ{}).
		Where("category_id = ?", categoryID).
		Count(&mcqCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count MCQs for category stats: %w", err)
	}
	stats.MCQCount = int(mcqCount)

	return stats, nil
}

// GetCategoriesWithCounts retrieves all categories with their usage counts
func (c *CategoryPostgreSQL) GetCategoriesWithCounts(ctx context.Context, tx *gorm.DB) ([]*repositories.CategoryWithCount, error) {
	db := c.getDB(tx)

	categories, err := c.List(ctx, tx, false)
	if err != nil {
		return nil, err
	}

	// Count per category in two grouped queries instead of N round trips
	questionCounts, err := c.countByCategory(ctx, db, &models.Question{})
	if err != nil {
		return nil, fmt.Errorf("failed to count questions per category: %w", err)
	}
	mcqCounts, err := c.countByCategory(ctx, db, &models.MCQ{})
	if err != nil {
		return nil, fmt.Errorf("failed to count MCQs per category: %w", err)
	}

	result := make([]*repositories.CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, &repositories.CategoryWithCount{
			QuestionCategory: category,
			QuestionCount:    questionCounts[category.ID],
			MCQCount:         mcqCounts[category.ID],
		})
	}

	return result, nil
}

func (c *CategoryPostgreSQL) countByCategory(ctx context.Context, db *gorm.DB, model interface{}) (map[uuid.UUID]int, error) {
	var results []struct {
		CategoryID uuid.UUID
		Count      int
	}
	if err := db.WithContext(ctx).
		Model(model).
		Select("category_id, COUNT(*) as count").
		Group("category_id").
		Find(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(results))
	for _, result := range results {
		counts[result.CategoryID] = result.Count
	}
	return counts, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CategoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
