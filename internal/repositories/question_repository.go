package repositories

import (
	"context"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepository interface for coding-question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Question, error) // Include category, test cases
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Question, error)

	// Query operations. List orders hand-authored questions first and
	// imported questions at the tail, newest first within each group.
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByTags(ctx context.Context, tx *gorm.DB, tags []string, filters QuestionFilters) ([]*models.Question, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters QuestionFilters) ([]*models.Question, int64, error)

	// Import support
	GetByImportedTaskID(ctx context.Context, tx *gorm.DB, taskID string) (*models.Question, error)

	// PDF blob access; metadata-only round trips elsewhere omit the blobs
	GetStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error)
	GetSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, string, error)
	UpdateStatementPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error
	UpdateSolutionPDF(ctx context.Context, tx *gorm.DB, id uuid.UUID, data []byte, filename string) error

	// Validation and checks
	ExistsByTitle(ctx context.Context, tx *gorm.DB, title string, creatorID string, excludeID *uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error)

	// Statistics
	GetUsageStats(ctx context.Context, tx *gorm.DB, creatorID string) (*QuestionUsageStats, error)
}

// QuestionCategoryRepository interface for category operations
type QuestionCategoryRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, category *models.QuestionCategory) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionCategory, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.QuestionCategory, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.QuestionCategory) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.QuestionCategory, error)

	// Validation
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uuid.UUID) (bool, error)
	HasQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)

	// Statistics
	GetCategoryStats(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*CategoryStats, error)
	GetCategoriesWithCounts(ctx context.Context, tx *gorm.DB) ([]*CategoryWithCount, error)
}

// QuestionTestCaseRepository interface for test case operations
type QuestionTestCaseRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, testCase *models.QuestionTestCase) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionTestCase, error)
	Update(ctx context.Context, tx *gorm.DB, testCase *models.QuestionTestCase) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters TestCaseFilters) ([]*models.QuestionTestCase, int64, error)
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) ([]*models.QuestionTestCase, error)

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, testCases []*models.QuestionTestCase) error
	DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error

	// Validation
	CountByQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (int64, error)
}
