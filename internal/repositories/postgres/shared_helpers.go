package postgres

import (
	"context"

	"github.com/codebench-edu/console-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"id":           true,
		"title":        true,
		"name":         true,
		"difficulty":   true,
		"category":     true,
		"course_code":  true,
		"submitted_at": true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// CountQuestionsInCategory counts questions attached to a category
func (h *SharedHelpers) CountQuestionsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountMCQsInCategory counts MCQs attached to a category
func (h *SharedHelpers) CountMCQsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.MCQ{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountSubmissionsForActivity counts submissions against an activity
func (h *SharedHelpers) CountSubmissionsForActivity(ctx context.Context, activityID uuid.UUID) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}

// CountSubmissionsByStatus counts submissions by completion status
func (h *SharedHelpers) CountSubmissionsByStatus(ctx context.Context, activityID uuid.UUID, status models.CompletionStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.ActivitySubmission{}).
		Where("activity_id = ? AND status = ?", activityID, status).
		Count(&count).Error
	return count, err
}
