package repositories

import (
	"context"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseRepository interface for course and enrollment operations
type CourseRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, courseCode string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)

	// Enrollment operations
	Enroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error
	Unenroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error
	GetEnrolledCourses(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Course, error)
	GetEnrollments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*models.CourseEnrollment, error)
	IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) (bool, error)

	// Validation
	ExistsByCode(ctx context.Context, tx *gorm.DB, courseCode string, excludeID *uuid.UUID) (bool, error)
}
