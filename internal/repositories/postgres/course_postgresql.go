package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found with ID %s", id)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, courseCode string) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).Where("course_code = ?", courseCode).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get course by code: %w", err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := c.getDB(tx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("course_id = ?", id).Delete(&models.CourseEnrollment{}).Error; err != nil {
			return fmt.Errorf("failed to delete course enrollments: %w", err)
		}
		if err := tx.WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	return err
}

// ===== QUERY OPERATIONS =====

// List retrieves courses with filtering and pagination
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{})

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(course_code) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query = query.Order("course_code ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

// ===== ENROLLMENT OPERATIONS =====

// Enroll adds a student to a course; enrolling twice is a no-op
func (c *CoursePostgreSQL) Enroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error {
	db := c.getDB(tx)

	enrolled, err := c.IsEnrolled(ctx, tx, courseID, studentID)
	if err != nil {
		return err
	}
	if enrolled {
		return nil
	}

	enrollment := &models.CourseEnrollment{
		CourseID:  courseID,
		StudentID: studentID,
	}
	if err := db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

// Unenroll removes a student from a course
func (c *CoursePostgreSQL) Unenroll(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&models.CourseEnrollment{}).Error; err != nil {
		return fmt.Errorf("failed to unenroll student: %w", err)
	}
	return nil
}

// GetEnrolledCourses retrieves the courses a student is enrolled in
func (c *CoursePostgreSQL) GetEnrolledCourses(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Course, error) {
	db := c.getDB(tx)
	var courses []*models.Course
	if err := db.WithContext(ctx).
		Joins("JOIN course_enrollments ce ON ce.course_id = courses.id").
		Where("ce.student_id = ? AND courses.is_active = ?", studentID, true).
		Order("courses.course_code ASC").
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}
	return courses, nil
}

// GetEnrollments retrieves all enrollments for a course
func (c *CoursePostgreSQL) GetEnrollments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*models.CourseEnrollment, error) {
	db := c.getDB(tx)
	var enrollments []*models.CourseEnrollment
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	return enrollments, nil
}

// IsEnrolled checks if a student is enrolled in a course
func (c *CoursePostgreSQL) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, studentID string) (bool, error) {
	db := c.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.CourseEnrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// ===== VALIDATION =====

// ExistsByCode checks if a course with the given code exists
func (c *CoursePostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, courseCode string, excludeID *uuid.UUID) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("course_code = ?", courseCode)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check course code existence: %w", err)
	}

	return count > 0, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
