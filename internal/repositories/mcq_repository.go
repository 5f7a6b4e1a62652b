package repositories

import (
	"context"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MCQRepository interface for multiple-choice question operations
type MCQRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, mcq *models.MCQ) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MCQ, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MCQ, error) // Include category
	Update(ctx context.Context, tx *gorm.DB, mcq *models.MCQ) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters MCQFilters) ([]*models.MCQ, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters MCQFilters) ([]*models.MCQ, int64, error)
	GetByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, filters MCQFilters) ([]*models.MCQ, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters MCQFilters) ([]*models.MCQ, int64, error)

	// Validation
	ExistsByTitle(ctx context.Context, tx *gorm.DB, title string, creatorID string, excludeID *uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error)
}
