package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"

	"github.com/codebench-edu/console-service/internal/models"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (s *courseService) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) GetEnrolledCourses(ctx context.Context, studentID string) ([]*models.Course, error) {
	courses, err := s.repo.Course().GetEnrolledCourses(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}
	return courses, nil
}

// Enroll adds a student to a course roster. Enrollment is managed by
// staff, so userID must belong to a teacher or admin. Re-enrolling an
// already enrolled student is a no-op at the repository level.
func (s *courseService) Enroll(ctx context.Context, courseID uuid.UUID, studentID string, userID string) error {
	if err := s.checkRosterAccess(ctx, courseID, userID, "enroll"); err != nil {
		return err
	}

	if err := s.repo.Course().Enroll(ctx, nil, courseID, studentID); err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}

	s.logger.Info("Student enrolled", "course_id", courseID, "student_id", studentID, "by", userID)
	return nil
}

func (s *courseService) Unenroll(ctx context.Context, courseID uuid.UUID, studentID string, userID string) error {
	if err := s.checkRosterAccess(ctx, courseID, userID, "unenroll"); err != nil {
		return err
	}

	if err := s.repo.Course().Unenroll(ctx, nil, courseID, studentID); err != nil {
		return fmt.Errorf("failed to unenroll student: %w", err)
	}

	s.logger.Info("Student unenrolled", "course_id", courseID, "student_id", studentID, "by", userID)
	return nil
}

func (s *courseService) checkRosterAccess(ctx context.Context, courseID uuid.UUID, userID string, action string) error {
	if _, err := s.repo.Course().GetByID(ctx, nil, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return err
	}
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return NewPermissionError(userID, courseID.String(), "course", action, "only teachers and admins manage enrollment")
	}
	return nil
}

func (s *courseService) getUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role, nil
}
